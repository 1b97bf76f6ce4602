package albumgrid

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/genai"
	"k8s.io/klog/v2"
)

// captionModel is the Gemini model used for generated captions.
var captionModel = "gemini-2.5-flash"

var captionPrompt = "Write a caption for this photo in at most eight words. " +
	"Describe only what is visible. Plain text, no quotes, no trailing period."

// AddAICaptions asks Gemini to caption every record that does not already
// have a caption. The thumbnail is sent rather than the original, which is
// plenty of pixels for a one-line description. Failures leave the filename
// caption in place.
func AddAICaptions(ctx context.Context, client *genai.Client, a *Assembly) {
	for _, r := range a.Records {
		if a.Captions[r.Source] != "" {
			continue
		}
		caption, err := aiCaption(ctx, client, r.Thumb)
		if err != nil {
			klog.Warningf("no AI caption for %s: %v", r.Source, err)
			continue
		}
		if caption != "" {
			a.Captions[r.Source] = caption
		}
	}
}

func aiCaption(ctx context.Context, client *genai.Client, path string) (string, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}

	mt := mime.TypeByExtension(filepath.Ext(path))
	if mt == "" {
		mt = "image/jpeg"
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(bs, mt),
		genai.NewPartFromText(captionPrompt),
	}
	resp, err := client.Models.GenerateContent(ctx, captionModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
