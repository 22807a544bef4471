/*
 * Copyright (C) 2025 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package ingest

import (
	"bufio"
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/netobserv/asn-ranges/pkg/api"
	log "github.com/sirupsen/logrus"
)

type ingestFile struct {
	fileName string
	format   string
}

// Ingest opens the file, decompressing it when its extension says so, and
// hands the stream to the decoder of its format.
func (r *ingestFile) Ingest(ctx context.Context, process ProcessFunction) error {
	log.Debugf("entering ingestFile Ingest, file = %s", r.fileName)
	if err := ctx.Err(); err != nil {
		return err
	}
	file, err := os.Open(r.fileName)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	defer func() {
		_ = file.Close()
	}()

	stream, closer, err := decompress(r.fileName, bufio.NewReaderSize(file, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrSourceUnreadable, r.fileName, err)
	}
	defer closer()

	switch r.format {
	case api.FormatBGPDump:
		return decodeBGPDump(ctx, r.fileName, stream, process)
	default:
		return decodeMRT(ctx, r.fileName, stream, process)
	}
}

func decompress(name string, in io.Reader) (io.Reader, func(), error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(in)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { _ = zr.Close() }, nil
	case ".zst":
		zr, err := zstd.NewReader(in)
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case ".bz2":
		return bzip2.NewReader(in), func() {}, nil
	default:
		return in, func() {}, nil
	}
}

// DetectFormat resolves api.FormatAuto from the file name, ignoring any
// compression extension.
func DetectFormat(fileName, format string) string {
	if format != "" && format != api.FormatAuto {
		return format
	}
	base := strings.ToLower(filepath.Base(fileName))
	for _, ext := range []string{".gz", ".zst", ".bz2"} {
		base = strings.TrimSuffix(base, ext)
	}
	switch filepath.Ext(base) {
	case ".txt", ".dump":
		return api.FormatBGPDump
	default:
		return api.FormatMRT
	}
}

// NewIngestFile create a new ingester
func NewIngestFile(params api.IngestFile) (Ingester, error) {
	log.Debugf("entering NewIngestFile")
	if params.Filename == "" {
		return nil, fmt.Errorf("ingest filename not specified")
	}
	format := DetectFormat(params.Filename, params.Format)
	switch format {
	case api.FormatMRT, api.FormatBGPDump:
	default:
		return nil, fmt.Errorf("unknown ingest format %q for %s", params.Format, params.Filename)
	}
	log.Debugf("input file name = %s, format = %s", params.Filename, format)

	return &ingestFile{
		fileName: params.Filename,
		format:   format,
	}, nil
}
