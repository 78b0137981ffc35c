package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kirillkom/shipment-docs-tracker/internal/bootstrap"
	"github.com/kirillkom/shipment-docs-tracker/internal/config"
	"github.com/kirillkom/shipment-docs-tracker/internal/core/domain"
	"github.com/kirillkom/shipment-docs-tracker/internal/core/usecase"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/repository/memory"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/seed"
	"github.com/kirillkom/shipment-docs-tracker/internal/infrastructure/sheets/xlsx"
)

func newRootCommand(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:          "shipdocsctl",
		Short:        "Inspect and exercise the shipment document tracker offline",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfg.SeedPath, "seed", cfg.SeedPath, "seed YAML file (embedded demo set when empty)")

	root.AddCommand(
		newSummaryCommand(&cfg),
		newExportCommand(&cfg),
		newAnalyzeCommand(&cfg),
	)
	return root
}

func newSummaryCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print dashboard totals for the seed as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dashboard, err := seedDashboard(cfg.SeedPath)
			if err != nil {
				return err
			}
			summary, err := dashboard.Summary(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), summary)
		},
	}
}

func newExportCommand(cfg *config.Config) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the seed dashboard to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dashboard, err := seedDashboard(cfg.SeedPath)
			if err != nil {
				return err
			}
			if dir := filepath.Dir(out); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return fmt.Errorf("create output dir: %w", err)
				}
			}
			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create workbook: %w", err)
			}
			if err := dashboard.ExportWorkbook(cmd.Context(), f); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close workbook: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "shipment-dashboard.xlsx", "output workbook path")
	return cmd
}

func newAnalyzeCommand(cfg *config.Config) *cobra.Command {
	var (
		filePath   string
		shipmentID string
		docType    string
		comments   string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one upload through the configured analyzer and print the outcome",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			typ, err := domain.ParseDocumentType(docType)
			if err != nil {
				return err
			}
			f, err := os.Open(filePath)
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return fmt.Errorf("stat file: %w", err)
			}

			appCfg := *cfg
			appCfg.MCPEnabled = false
			app, err := bootstrap.New(cmd.Context(), appCfg)
			if err != nil {
				return err
			}
			defer app.Close()

			outcome, err := app.Uploads.SubmitUpload(cmd.Context(), domain.UploadRequest{
				File: &domain.FileDescriptor{
					Name: filepath.Base(filePath),
					Size: info.Size(),
				},
				Body:         f,
				ShipmentID:   shipmentID,
				DocumentType: typ,
				Comments:     comments,
			})
			if err != nil {
				if domain.IsKind(err, domain.ErrAnalysisFailed) {
					return fmt.Errorf("%s (%w)", domain.AnalysisFailedMessage, err)
				}
				return err
			}
			return printJSON(cmd.OutOrStdout(), outcome)
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "document to upload")
	cmd.Flags().StringVar(&shipmentID, "shipment", "", "target shipment id")
	cmd.Flags().StringVar(&docType, "type", "", "document type name or abbreviation")
	cmd.Flags().StringVar(&comments, "comments", "", "optional comments for the activity log")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("shipment")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func seedDashboard(path string) (*usecase.DashboardUseCase, error) {
	shipments, err := seed.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	store, err := memory.NewSessionStore(shipments)
	if err != nil {
		return nil, err
	}
	return usecase.NewDashboardUseCase(store, xlsx.NewRenderer()), nil
}

func printJSON(w io.Writer, payload any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
