package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ocean-chem/longhurst-cli/internal/fetcher"
	"github.com/ocean-chem/longhurst-cli/internal/resilience"
)

var (
	fetchDest string
	fetchURL  string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download boundary and ancillary data",
	Long:  "Commands for downloading the GML province file, the MarineRegions shapefile ZIP, and WOA climatology over FTP.",
}

// -- fetch gml --

var fetchGMLCmd = &cobra.Command{
	Use:   "gml",
	Short: "Download the GML province boundary file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		url := fetchURL
		if url == "" {
			url = cfg.Fetch.GMLURL
		}
		dest := fetchDest
		if dest == "" {
			dest = filepath.Join(fetchTempDir(), "longhurst.xml")
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return eris.Wrap(err, "fetch: create destination directory")
		}

		// The boundary file changes rarely; skip the download when the
		// server still holds the ETag cached next to the destination.
		etagPath := dest + ".etag"
		etag := ""
		if raw, err := os.ReadFile(etagPath); err == nil {
			etag = strings.TrimSpace(string(raw))
		}

		f := newHTTPFetcher()
		body, newETag, changed, err := f.DownloadIfChanged(ctx, url, etag)
		if err != nil {
			return eris.Wrap(err, "fetch gml")
		}
		if !changed {
			zap.L().Info("gml boundary file unchanged",
				zap.String("url", url),
				zap.String("dest", dest),
			)
			return nil
		}
		defer body.Close() //nolint:errcheck

		out, err := os.Create(dest)
		if err != nil {
			return eris.Wrap(err, "fetch gml: create destination")
		}
		defer out.Close() //nolint:errcheck
		n, err := io.Copy(out, body)
		if err != nil {
			return eris.Wrap(err, "fetch gml: write destination")
		}
		if newETag != "" {
			if err := os.WriteFile(etagPath, []byte(newETag), 0o644); err != nil {
				zap.L().Warn("could not cache etag", zap.Error(err))
			}
		}

		zap.L().Info("gml boundary file downloaded",
			zap.String("url", url),
			zap.String("dest", dest),
			zap.Int64("bytes", n),
		)
		return nil
	},
}

// -- fetch shapefile --

var fetchShapefileCmd = &cobra.Command{
	Use:   "shapefile",
	Short: "Download and extract the MarineRegions shapefile ZIP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		url := fetchURL
		if url == "" {
			url = cfg.Fetch.ShapefileURL
		}
		destDir := fetchDest
		if destDir == "" {
			destDir = fetchTempDir()
		}
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return eris.Wrap(err, "fetch: create destination directory")
		}

		zipPath := filepath.Join(destDir, "longhurst_v4_2010.zip")
		f := newHTTPFetcher()
		if _, err := f.DownloadToFile(ctx, url, zipPath); err != nil {
			return eris.Wrap(err, "fetch shapefile: download")
		}

		extracted, err := fetcher.ExtractZIP(zipPath, destDir)
		if err != nil {
			return eris.Wrap(err, "fetch shapefile: extract")
		}

		shpPath := ""
		for _, p := range extracted {
			if strings.EqualFold(filepath.Ext(p), ".shp") {
				shpPath = p
				break
			}
		}
		if shpPath == "" {
			return eris.Errorf("fetch shapefile: no .shp file in archive (%d files extracted)", len(extracted))
		}

		zap.L().Info("shapefile downloaded and extracted",
			zap.String("url", url),
			zap.String("shp", shpPath),
			zap.Int("files", len(extracted)),
		)
		return nil
	},
}

// -- fetch woa --

var fetchWOACmd = &cobra.Command{
	Use:   "woa",
	Short: "Download WOA climatology over FTP",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		url := fetchURL
		if url == "" {
			url = cfg.Fetch.WOAURL
		}
		dest := fetchDest
		if dest == "" {
			dest = filepath.Join(fetchTempDir(), filepath.Base(url))
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return eris.Wrap(err, "fetch: create destination directory")
		}

		f := fetcher.NewFTPFetcher(fetcher.FTPOptions{Timeout: 60 * time.Second})

		// FTP has no retry built in, unlike the HTTP path.
		retryCfg := resilience.DefaultRetryConfig()
		retryCfg.OnRetry = resilience.RetryLogger("woa", "ftp download")
		n, err := resilience.DoVal(ctx, retryCfg, func(ctx context.Context) (int64, error) {
			return f.DownloadToFile(ctx, url, dest)
		})
		if err != nil {
			return eris.Wrap(err, "fetch woa")
		}

		zap.L().Info("woa climatology downloaded",
			zap.String("url", url),
			zap.String("dest", dest),
			zap.Int64("bytes", n),
		)
		return nil
	},
}

func init() {
	fetchCmd.PersistentFlags().StringVar(&fetchDest, "dest", "", "destination path or directory (default from fetch.temp_dir)")
	fetchCmd.PersistentFlags().StringVar(&fetchURL, "url", "", "source URL (overrides config)")

	fetchCmd.AddCommand(fetchGMLCmd)
	fetchCmd.AddCommand(fetchShapefileCmd)
	fetchCmd.AddCommand(fetchWOACmd)
	rootCmd.AddCommand(fetchCmd)
}

func fetchTempDir() string {
	if cfg.Fetch.TempDir != "" {
		return cfg.Fetch.TempDir
	}
	return filepath.Join(os.TempDir(), "longhurst")
}

func newHTTPFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent: cfg.Fetch.UserAgent,
		Timeout:   2 * time.Minute,
	})
}
