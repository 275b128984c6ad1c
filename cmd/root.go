package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Lay out receipt scripts and render them to PDF",
	Long: `quill reads receipt scripts, binds JSON data into them, paginates the
content for thermal rolls or cut-sheet paper and writes PDF files.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML 配置文件路径（QUILL_* 环境变量优先）")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
