// Command update_manuf downloads the Wireshark manufacturer database and
// replaces the embedded dataset once it parses and builds cleanly.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/ipastusi/macsql/oui"
)

const manufURL = "https://www.wireshark.org/download/automated/data/manuf"

func main() {
	url := flag.String("u", manufURL, "manuf download URL")
	out := flag.String("o", "manuf.txt", "output file")
	timeout := flag.Duration("t", time.Minute, "download timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := update(ctx, http.DefaultClient, *url, *out); err != nil {
		slog.Error("update failed", "url", *url, "error", err)
		os.Exit(1)
	}
}

func update(ctx context.Context, client *http.Client, url, out string) error {
	slog.Info("downloading", "url", url)
	data, err := download(ctx, client, url)
	if err != nil {
		return err
	}

	records, err := oui.ParseDataset(bytes.NewReader(data))
	if err != nil {
		return err
	}
	reg, err := oui.Build(records)
	if err != nil {
		return err
	}
	slog.Info("dataset validated", "records", reg.Len(), "duplicates", reg.Duplicates(), "skipped", reg.Skipped())

	return writeAtomic(out, data)
}

func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %v: unexpected status %v", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// writeAtomic replaces path so readers never see a partial dataset.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".manuf-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
