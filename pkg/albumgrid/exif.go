package albumgrid

import (
	"github.com/barasher/go-exiftool"
	"k8s.io/klog/v2"
)

// exifCaptions fills a.Captions with EXIF Headline text, falling back to
// ImageDescription, for each record that carries one. Records without
// usable metadata keep their filename caption. A missing exiftool binary
// disables the feature for the run rather than failing it.
func exifCaptions(a *Assembly) {
	et, err := exiftool.NewExiftool()
	if err != nil {
		a.logf("exif captions unavailable: %v", err)
		return
	}
	defer et.Close()

	for _, r := range a.Records {
		fis := et.ExtractMetadata(r.Source)
		if len(fis) == 0 {
			continue
		}
		fi := fis[0]
		if fi.Err != nil {
			klog.V(1).Infof("no metadata for %s: %v", r.Source, fi.Err)
			continue
		}

		caption, err := fi.GetString("Headline")
		if err != nil || caption == "" {
			caption, err = fi.GetString("ImageDescription")
		}
		if err != nil || caption == "" {
			klog.V(2).Infof("no caption fields in %s", r.Source)
			continue
		}
		a.Captions[r.Source] = caption
	}
}
