package database

import "testing"

func TestLatestEmbeddedVersion(t *testing.T) {
	v, err := latestEmbeddedVersion()
	if err != nil {
		t.Fatalf("读取嵌入迁移失败: %v", err)
	}
	// 000001_init_schedule, 000002_sync_audit
	if v != 2 {
		t.Errorf("期望最高版本 2，实际 %d", v)
	}
}
