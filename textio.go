package sluice

import (
	"bufio"
	"context"
	"fmt"

	humanize "github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/sluiceio/sluice/internal/pkg/pipefs"
)

// ReadText returns a collection of the lines of every file matching
// pathGlob. The filesystem is inferred from the path scheme: "s3://" paths
// read from S3, everything else from local disk. Files are read during
// materialization, not at construction.
func ReadText(p *Pipeline, pathGlob string) Collection {
	n := p.newNode(readNode)
	n.pathGlob = pathGlob
	return Collection{p: p, n: n}
}

func readLines(pathGlob string) ([]any, error) {
	fs, err := pipefs.Infer(pathGlob)
	if err != nil {
		return nil, err
	}

	files, err := fs.ListFiles(pathGlob)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		log.Warnf("No files match %s", pathGlob)
	}

	lines := make([]any, 0)
	var totalBytes int64
	for _, file := range files {
		reader, err := fs.OpenReader(file.Name, 0)
		if err != nil {
			return nil, err
		}

		scanner := bufio.NewScanner(reader)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		err = scanner.Err()
		reader.Close()
		if err != nil {
			return nil, err
		}
		totalBytes += file.Size
	}
	log.Debugf("Read %s from %d file(s) matching %s", humanize.Bytes(uint64(totalBytes)), len(files), pathGlob)

	return lines, nil
}

// WriteText materializes c and writes one line per element to path,
// formatting non-string elements with %v. The filesystem is inferred from
// the path scheme, as in ReadText.
func WriteText(ctx context.Context, c Collection, path string, opts ...RunOption) error {
	elems, err := Materialize(ctx, c, opts...)
	if err != nil {
		return err
	}

	fs, err := pipefs.Infer(path)
	if err != nil {
		return err
	}
	writer, err := fs.OpenWriter(path)
	if err != nil {
		return err
	}

	var written int64
	for _, elem := range elems {
		n, err := fmt.Fprintf(writer, "%v\n", elem)
		written += int64(n)
		if err != nil {
			writer.Close()
			return err
		}
	}
	if err := writer.Close(); err != nil {
		return err
	}

	log.Infof("Wrote %s to %s", humanize.Bytes(uint64(written)), path)
	return nil
}
