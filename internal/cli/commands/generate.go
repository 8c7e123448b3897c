package commands

import (
	"context"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OLEGSHA/kendb3/internal/api/codegen"
	"github.com/OLEGSHA/kendb3/internal/assets/autogen"
	"github.com/OLEGSHA/kendb3/internal/cli/config"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate frontend sources",
		Long: "Run the registered asset generators, producing the TypeScript " +
			"model declarations for the frontend.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = cfg.Generate.OutputDir
			}

			log, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			defer log.Sync()

			registry, err := buildRegistry()
			if err != nil {
				return err
			}

			modelsPath := filepath.Join(outputDir, "dataman_models.ts")

			generators := autogen.NewRegistry()
			if err := generators.Register("model-declarations", func(ctx context.Context) error {
				return codegen.New(registry).WriteFile(modelsPath)
			}); err != nil {
				return err
			}

			if err := generators.Run(cmd.Context(), log); err != nil {
				return err
			}

			success := color.New(color.FgGreen, color.Bold)
			success.Printf("Generated %s\n", modelsPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default from config)")
	return cmd
}
