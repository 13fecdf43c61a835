package main

import (
	"github.com/spf13/cobra"

	"uni-portal/backend/internal/dto"
	"uni-portal/backend/internal/service"
)

func newRunsCmd(root *rootOptions) *cobra.Command {
	var req dto.SyncScopeRequest

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent reconciliation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := bootstrap(root)
			if err != nil {
				return err
			}
			defer e.close()

			catalog := service.NewCatalogService(e.repo, nil, e.cfg.Sync.ClassCacheTTL, e.logger)
			runs, total, err := catalog.ListSyncRuns(cmd.Context(), &req)
			if err != nil {
				return err
			}
			renderRuns(cmd.OutOrStdout(), runs, total)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Year, "year", "", "Academic year label, e.g. 2024-2025")
	cmd.Flags().StringVar(&req.Term, "term", "", "Term label, e.g. 1")
	cmd.Flags().IntVar(&req.PageSize, "limit", 20, "Max rows (1-100)")

	return cmd
}
