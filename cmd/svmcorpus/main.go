// Command svmcorpus inspects, validates and converts SVMlight corpora on
// the local filesystem, S3 or MinIO.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/aws/aws-sdk-go-v2/config"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sharecqy/svmcorpus"
	"github.com/sharecqy/svmcorpus/blobstore"
	miniostore "github.com/sharecqy/svmcorpus/blobstore/minio"
	s3store "github.com/sharecqy/svmcorpus/blobstore/s3"
	"github.com/sharecqy/svmcorpus/codec"
)

const version = "0.1.0"

// CLI defines the command-line interface for svmcorpus.
var CLI struct {
	Verbose bool `short:"v" help:"Enable debug logging."`

	Stats    StatsCmd    `cmd:"" help:"Count documents, pairs and features in a corpus."`
	Get      GetCmd      `cmd:"" help:"Print single documents by byte offset or docno."`
	Convert  ConvertCmd  `cmd:"" help:"Rewrite a corpus, optionally compressed, capturing offsets."`
	Validate ValidateCmd `cmd:"" help:"Check that every corpus line parses."`
	Version  VersionCmd  `cmd:"" help:"Print version information."`
}

// StatsCmd streams a corpus once and reports aggregate counts.
type StatsCmd struct {
	Path string `arg:"" help:"Corpus path (local, s3://bucket/key or minio://endpoint/bucket/key)."`
}

func (c *StatsCmd) Run() error {
	ctx := context.Background()

	corpus, err := openCorpus(c.Path)
	if err != nil {
		return err
	}

	var docs, pairs int
	maxID := -1
	for doc, err := range corpus.Docs(ctx) {
		if err != nil {
			return err
		}
		docs++
		pairs += len(doc)
		for _, p := range doc {
			if p.ID > maxID {
				maxID = p.ID
			}
		}
	}

	fmt.Printf("documents: %d\n", docs)
	fmt.Printf("pairs:     %d\n", pairs)
	fmt.Printf("features:  %d\n", maxID+1)
	return nil
}

// GetCmd reads single documents without streaming the whole corpus.
// Documents print as SVMlight lines with target 0; targets are not
// retained on read.
type GetCmd struct {
	Path        string  `arg:"" help:"Corpus path (local, s3://bucket/key or minio://endpoint/bucket/key)."`
	Offset      []int64 `short:"o" help:"Byte offsets to read."`
	Docno       []int   `short:"n" help:"Document numbers to read; needs --offsets-file."`
	OffsetsFile string  `name:"offsets-file" help:"File with one byte offset per line, as written by convert."`
}

func (c *GetCmd) Run() error {
	ctx := context.Background()

	var opts []svmcorpus.Option
	if c.OffsetsFile != "" {
		offsets, err := readOffsets(c.OffsetsFile)
		if err != nil {
			return err
		}
		opts = append(opts, svmcorpus.WithOffsets(offsets))
	}
	if len(c.Docno) > 0 && c.OffsetsFile == "" {
		return fmt.Errorf("docno reads need --offsets-file")
	}

	corpus, err := openCorpus(c.Path, opts...)
	if err != nil {
		return err
	}

	if len(c.Offset) > 0 {
		docs, err := corpus.DocsByOffset(ctx, c.Offset)
		if err != nil {
			return err
		}
		for _, doc := range docs {
			fmt.Print(codec.Default.RenderLine(doc, 0))
		}
	}

	for _, docno := range c.Docno {
		doc, err := corpus.DocByNum(ctx, docno)
		if err != nil {
			return err
		}
		fmt.Print(codec.Default.RenderLine(doc, 0))
	}
	return nil
}

// ConvertCmd streams a corpus into a new destination. The destination
// extension picks the compression (.gz, .zst, .lz4, .xz or none).
type ConvertCmd struct {
	Src        string `arg:"" help:"Source corpus path."`
	Dst        string `arg:"" help:"Destination corpus path."`
	LabelsFile string `name:"labels-file" help:"File with one target value per document line."`
	OffsetsOut string `name:"offsets-out" help:"Write document byte offsets to this file, one per line."`
}

func (c *ConvertCmd) Run() error {
	ctx := context.Background()

	src, err := openCorpus(c.Src)
	if err != nil {
		return err
	}

	var labels []float64
	if c.LabelsFile != "" {
		labels, err = readLabels(c.LabelsFile)
		if err != nil {
			return err
		}
	}

	dstStore, dstKey, err := storeFor(c.Dst)
	if err != nil {
		return err
	}

	offsets, err := svmcorpus.Save(ctx, dstKey, src.Docs(ctx), func(o *svmcorpus.SaveOptions) {
		o.Store = dstStore
		o.Labels = labels
		if CLI.Verbose {
			o.Logger = svmcorpus.NewTextLogger(slog.LevelDebug)
		}
	})
	if err != nil {
		return err
	}

	if c.OffsetsOut != "" {
		if err := writeOffsets(c.OffsetsOut, offsets); err != nil {
			return err
		}
	}

	fmt.Printf("converted %d documents to %s\n", len(offsets), c.Dst)
	return nil
}

// ValidateCmd parses every line and reports the first malformed one.
type ValidateCmd struct {
	Path string `arg:"" help:"Corpus path (local, s3://bucket/key or minio://endpoint/bucket/key)."`
}

func (c *ValidateCmd) Run() error {
	ctx := context.Background()

	corpus, err := openCorpus(c.Path)
	if err != nil {
		return err
	}

	var docs int
	for _, err := range corpus.Docs(ctx) {
		if err != nil {
			return err
		}
		docs++
	}

	fmt.Printf("ok: %d documents\n", docs)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("svmcorpus %s\n", version)
	return nil
}

func openCorpus(path string, opts ...svmcorpus.Option) (*svmcorpus.Corpus, error) {
	store, key, err := storeFor(path)
	if err != nil {
		return nil, err
	}
	opts = append(opts, svmcorpus.WithStore(store))
	if CLI.Verbose {
		opts = append(opts, svmcorpus.WithLogLevel(slog.LevelDebug))
	}
	return svmcorpus.Open(key, opts...)
}

// storeFor resolves a path to a blob store and the key within it.
//
//	s3://bucket/key             AWS credentials from the default chain
//	minio://endpoint/bucket/key credentials from MINIO_ACCESS_KEY etc.
//	anything else               local filesystem
func storeFor(path string) (blobstore.Store, string, error) {
	switch {
	case strings.HasPrefix(path, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(path, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, "", fmt.Errorf("s3 path %q needs bucket/key", path)
		}
		cfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, "", fmt.Errorf("load aws config: %w", err)
		}
		return s3store.NewStore(awss3.NewFromConfig(cfg), bucket), key, nil

	case strings.HasPrefix(path, "minio://"):
		endpoint, rest, _ := strings.Cut(strings.TrimPrefix(path, "minio://"), "/")
		bucket, key, ok := strings.Cut(rest, "/")
		if endpoint == "" || !ok || bucket == "" || key == "" {
			return nil, "", fmt.Errorf("minio path %q needs endpoint/bucket/key", path)
		}
		client, err := minio.New(endpoint, &minio.Options{
			Creds:  credentials.NewEnvMinio(),
			Secure: os.Getenv("MINIO_SECURE") != "",
		})
		if err != nil {
			return nil, "", fmt.Errorf("connect to minio: %w", err)
		}
		return miniostore.NewStore(client, bucket), key, nil

	default:
		return blobstore.NewLocalStore(), path, nil
	}
}

func readOffsets(path string) ([]int64, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	offsets := make([]int64, 0, len(lines))
	for _, line := range lines {
		offset, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("offsets file %s: %w", path, err)
		}
		offsets = append(offsets, offset)
	}
	return offsets, nil
}

func readLabels(path string) ([]float64, error) {
	lines, err := readLines(path)
	if err != nil {
		return nil, err
	}
	labels := make([]float64, 0, len(lines))
	for _, line := range lines {
		label, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("labels file %s: %w", path, err)
		}
		labels = append(labels, label)
	}
	return labels, nil
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

func writeOffsets(path string, offsets []int64) error {
	var sb strings.Builder
	for _, offset := range offsets {
		sb.WriteString(strconv.FormatInt(offset, 10))
		sb.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(sb.String()), 0o644)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("svmcorpus"),
		kong.Description("Inspect, validate and convert SVMlight corpora."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
