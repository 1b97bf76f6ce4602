package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"k8s.io/klog/v2"

	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"google.golang.org/genai"

	albumgrid "github.com/albumgrid/albumgrid/pkg/albumgrid"
)

var (
	inDir         = flag.String("in", "", "Location of the source image directory")
	thumbDir      = flag.String("thumbs", "", "Location of the thumbnail directory (default <in>/thumbs)")
	albumPath     = flag.String("album", "", "Path of the album file (default <in>/htm_album.htm)")
	sizeFlag      = flag.String("size", "128x128", "Thumbnail size as WxH")
	columns       = flag.Int("columns", 4, "Thumbnails per album row")
	extsFlag      = flag.String("exts", "", "Comma-separated source extensions (default the stock image set)")
	tail          = flag.String("tail", "_thn", "Filename suffix marking thumbnails")
	format        = flag.String("format", ".jpg", "Extension, and thereby format, of thumbnails")
	noRunLog      = flag.Bool("no-runlog", false, "Skip appending the dated run log to the thumbnail directory")
	exifCaptions  = flag.Bool("exif-captions", false, "Caption images from EXIF Headline or ImageDescription")
	aiCaptions    = flag.Bool("ai-captions", false, "Caption images with Gemini (requires GOOGLE_AI_API_KEY)")
	selfContained = flag.Bool("self-contained", false, "Copy originals next to the album so the output tree stands alone")
	publishFlag   = flag.String("publish", "", "S3 destination as bucket or bucket/prefix")
	s3Region      = flag.String("s3-region", "us-east-1", "S3 region for --publish")
	listen        = flag.Bool("listen", false, "Serve the album directory via HTTP")
	addr          = flag.String("addr", "localhost:12801", "host:port to bind to in listen mode")
	watchFlag     = flag.Bool("watch", false, "Watch the source directory and rebuild on changes")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	loadEnv()

	if *inDir == "" {
		klog.Exitf("--in is a required flag")
	}

	size, err := albumgrid.ParseSize(*sizeFlag)
	if err != nil {
		klog.Exitf("--size: %v", err)
	}

	c := &albumgrid.Config{
		InDir:         *inDir,
		ThumbDir:      *thumbDir,
		AlbumPath:     *albumPath,
		ThumbSize:     size,
		ThumbTail:     *tail,
		ThumbExt:      normalizeExt(*format),
		Columns:       *columns,
		Exts:          parseExts(*extsFlag),
		WriteLog:      !*noRunLog,
		ExifCaptions:  *exifCaptions,
		SelfContained: *selfContained,
	}

	ctx := context.Background()

	var client *genai.Client
	if *aiCaptions {
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: os.Getenv("GOOGLE_AI_API_KEY"),
		})
		if err != nil {
			klog.Exitf("genai client: %v", err)
		}
	}

	var up *s3manager.Uploader
	if *publishFlag != "" {
		up, err = albumgrid.NewUploader(*s3Region)
		if err != nil {
			klog.Exitf("s3 uploader: %v", err)
		}
	}

	album, err := runOnce(ctx, c, client, up)
	if err != nil {
		klog.Exitf("build failed: %v", err)
	}

	var wg sync.WaitGroup
	if *watchFlag {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := watch(ctx, c, client, up, album); err != nil {
				klog.Exitf("watch failed: %v", err)
			}
		}()
	}

	if *listen {
		wg.Add(1)
		go func() {
			defer wg.Done()
			serve(filepath.Dir(album), *addr)
		}()
	}

	wg.Wait()
}

// runOnce builds the thumbnails and the album, then captions and publishes
// as configured. It returns the album path written.
func runOnce(ctx context.Context, c *albumgrid.Config, client *genai.Client, up *s3manager.Uploader) (string, error) {
	a, err := albumgrid.Collect(c)
	if err != nil {
		return "", err
	}

	if client != nil {
		albumgrid.AddAICaptions(ctx, client, a)
	}

	album, err := albumgrid.Render(c, a)
	if err != nil {
		return "", err
	}

	if up != nil {
		bucket, prefix, _ := strings.Cut(*publishFlag, "/")
		if err := albumgrid.Publish(ctx, up, bucket, prefix, album, a); err != nil {
			return album, fmt.Errorf("publish: %w", err)
		}
	}
	return album, nil
}

// serve serves a static web directory via HTTP.
func serve(dir string, addr string) {
	fs := http.FileServer(http.Dir(dir))
	http.Handle("/", fs)

	klog.Infof("Listening on http://%s ...", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		klog.Exitf("listen failed: %v", err)
	}
}

// watch rebuilds whenever a source image inside the input directory
// changes. The album written by the previous pass is removed first so each
// rebuild lands on the same path instead of stacking numbered variants.
func watch(ctx context.Context, c *albumgrid.Config, client *genai.Client, up *s3manager.Uploader, album string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(c.InDir); err != nil {
		return fmt.Errorf("watch %s: %w", c.InDir, err)
	}
	klog.Infof("watching %s ...", c.InDir)

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			if !sourceImage(c, event.Name) {
				continue
			}

			klog.Infof("rebuilding after %s", event)
			if album != "" {
				if err := os.Remove(album); err != nil && !os.IsNotExist(err) {
					klog.Warningf("remove %s: %v", album, err)
				}
			}
			album, err = runOnce(ctx, c, client, up)
			if err != nil {
				klog.Errorf("rebuild failed: %v", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			klog.Errorf("watch error: %v", err)
		}
	}
}

// sourceImage reports whether name looks like a source image rather than
// one of our own outputs. Thumbnails carry the tail suffix, and the album
// and run log have non-image extensions.
func sourceImage(c *albumgrid.Config, name string) bool {
	base := filepath.Base(name)
	ext := strings.ToLower(filepath.Ext(base))

	ok := false
	for _, e := range c.Exts {
		if ext == strings.ToLower(e) {
			ok = true
			break
		}
	}
	if !ok {
		return false
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return !strings.HasSuffix(stem, c.ThumbTail)
}

// loadEnv fills unset flags from the environment, reading a .env file from
// the working directory when one exists.
func loadEnv() {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			klog.Warningf("could not read .env: %v", err)
		}
	}

	for env, f := range map[string]*string{
		"ALBUMGRID_IN":      inDir,
		"ALBUMGRID_THUMBS":  thumbDir,
		"ALBUMGRID_ALBUM":   albumPath,
		"ALBUMGRID_PUBLISH": publishFlag,
	} {
		if *f == "" {
			*f = os.Getenv(env)
		}
	}
}

func parseExts(s string) []string {
	if s == "" {
		return nil
	}
	var exts []string
	for _, e := range strings.Split(s, ",") {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		exts = append(exts, normalizeExt(e))
	}
	return exts
}

// normalizeExt gives an extension its leading dot, so "png" and ".png" on
// the command line mean the same thing.
func normalizeExt(e string) string {
	if e != "" && !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}
