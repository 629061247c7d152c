package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/skybasehq/skybase-go"
	"github.com/spf13/cobra"
)

var (
	flagLsPrefix          string
	flagDownloadOut       string
	flagUploadName        string
	flagUploadConcurrency int
)

var lsCmd = &cobra.Command{
	Use:   "ls <drive>",
	Short: "List all files in a drive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		names, err := client.Drive(args[0]).ListAll(cmd.Context(), flagLsPrefix)
		if err != nil {
			return err
		}
		for _, name := range names {
			fmt.Println(name)
		}
		slog.Info("listed files", "drive", args[0], "count", len(names))
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <drive> <name>",
	Short: "Download a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		content, err := client.Drive(args[0]).Get(cmd.Context(), args[1])
		if err != nil {
			return err
		}

		out := flagDownloadOut
		if out == "" {
			out = filepath.Base(args[1])
		}
		if err := os.WriteFile(out, content, 0o644); err != nil {
			return err
		}
		slog.Info("downloaded", "name", args[1], "size", humanize.Bytes(uint64(len(content))), "path", out)
		return nil
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <drive> <file>",
	Short: "Upload a file, chunking large contents",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		content, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}

		saveAs := flagUploadName
		if saveAs == "" {
			saveAs = filepath.Base(args[1])
		}

		out, err := client.Drive(args[0]).PutWithOptions(cmd.Context(), saveAs, content, &skybase.UploadOptions{
			Concurrency: flagUploadConcurrency,
		})
		if err != nil {
			return err
		}
		slog.Info("uploaded", "name", out.Name, "size", humanize.Bytes(uint64(len(content))))
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <drive> <name>...",
	Short: "Delete files",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}

		out, err := client.Drive(args[0]).Delete(cmd.Context(), args[1:]...)
		if err != nil {
			return err
		}
		for _, name := range out.Deleted {
			fmt.Println(name)
		}
		for name, reason := range out.Failed {
			slog.Warn("delete failed", "name", name, "reason", reason)
		}
		return nil
	},
}

func init() {
	lsCmd.Flags().StringVar(&flagLsPrefix, "prefix", "", "only list names with this prefix")
	downloadCmd.Flags().StringVarP(&flagDownloadOut, "output", "o", "", "write to this path instead of the file name")
	uploadCmd.Flags().StringVar(&flagUploadName, "name", "", "store under this name instead of the file name")
	uploadCmd.Flags().IntVar(&flagUploadConcurrency, "concurrency", 1, "parallel part uploads for chunked uploads")

	rootCmd.AddCommand(lsCmd, downloadCmd, uploadCmd, rmCmd)
}
