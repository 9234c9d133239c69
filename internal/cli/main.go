package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "reelcut",
		Short:        "Turn a long video into captioned vertical reels and upload them",
		SilenceUsage: true,
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.PersistentFlags().String("config", "config.yaml", "Config file path")

	root.AddCommand(newClipCmd())
	root.AddCommand(newUploadCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newClipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clip [input]",
		Short: "Cut a local video into vertical reels with captions and music",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClip(cmd, args)
		},
	}
	cmd.Flags().String("out", "", "Output directory")
	cmd.Flags().Int("window", 0, "Clip window length in seconds")
	cmd.Flags().String("music", "", "Background music directory")
	cmd.Flags().String("watch", "", "Watch a directory and process videos as they arrive")
	return cmd
}

func newUploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <folder>",
		Short: "Upload a folder of finished reels in rate-limited batches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, args[0])
		},
	}
	cmd.Flags().String("token", "", "Page access token (falls back to token.txt)")
	cmd.Flags().String("page", "", "Page ID (falls back to page_id.txt)")
	cmd.Flags().String("caption", "", "Caption for all videos (overrides caption.txt)")
	return cmd
}
