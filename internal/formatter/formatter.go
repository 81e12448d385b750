// package formatter renders playback snapshots for the CLI (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/nowplaying/internal/models"
	"github.com/desertthunder/nowplaying/internal/shared"
)

// Supported output formats
const (
	FormatJSON     = "json"
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// Formats lists every name accepted by [Render].
var Formats = []string{FormatJSON, FormatText, FormatMarkdown, FormatCSV}

const notPlayingText = "Nothing is playing."

var csvHeaders = []string{"Timestamp", "Playing", "Title", "Artist", "Album", "Current", "Duration", "Progress", "URL"}

// Render dispatches to the renderer for format.
func Render(snap *models.PlaybackSnapshot, format string) ([]byte, error) {
	switch format {
	case FormatJSON, "":
		return shared.MarshalJSON(snap, true)
	case FormatText:
		return ToText(snap), nil
	case FormatMarkdown:
		return ToMarkdown(snap, ""), nil
	case FormatCSV:
		return ToCSV(snap, time.Now(), true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ToText renders a snapshot as a few human readable lines.
func ToText(snap *models.PlaybackSnapshot) []byte {
	if snap == nil || !snap.IsPlaying {
		return []byte(notPlayingText + "\n")
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s - %s\n", snap.Artist, snap.Title)
	if snap.Album != "" {
		fmt.Fprintf(&buf, "Album: %s\n", snap.Album)
	}
	fmt.Fprintf(&buf, "Position: %s / %s (%.1f%%)\n", snap.Current, snap.Duration, snap.Progress)
	if snap.SongURL != "" {
		fmt.Fprintf(&buf, "URL: %s\n", snap.SongURL)
	}
	return buf.Bytes()
}

// ToMarkdown renders a snapshot as Markdown with an optional cover image.
//
// imageRef defaults to the remote album cover.
func ToMarkdown(snap *models.PlaybackSnapshot, imageRef string) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Now Playing\n\n")

	if snap == nil || !snap.IsPlaying {
		buf.WriteString("_" + notPlayingText + "_\n")
		return buf.Bytes()
	}

	if imageRef == "" {
		imageRef = snap.AlbumCover
	}
	if imageRef != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageRef)
	}

	title := snap.Title
	if snap.SongURL != "" {
		title = fmt.Sprintf("[%s](%s)", snap.Title, snap.SongURL)
	}
	fmt.Fprintf(&buf, "**Title**: %s\n", title)
	fmt.Fprintf(&buf, "**Artist**: %s\n", snap.Artist)
	if snap.Album != "" {
		fmt.Fprintf(&buf, "**Album**: %s\n", snap.Album)
	}
	fmt.Fprintf(&buf, "**Position**: %s / %s\n", snap.Current, snap.Duration)

	return buf.Bytes()
}

// ToCSV renders a snapshot as one CSV record stamped with at, optionally preceded by the header row.
//
// Records from repeated polls can be appended to the same file.
func ToCSV(snap *models.PlaybackSnapshot, at time.Time, header bool) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if header {
		if err := writer.Write(csvHeaders); err != nil {
			return nil, fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	if snap == nil {
		snap = models.NotPlaying()
	}
	record := []string{
		at.UTC().Format(time.RFC3339),
		strconv.FormatBool(snap.IsPlaying),
		snap.Title,
		snap.Artist,
		snap.Album,
		snap.Current,
		snap.Duration,
		strconv.FormatFloat(snap.Progress, 'f', 2, 64),
		snap.SongURL,
	}
	if err := writer.Write(record); err != nil {
		return nil, fmt.Errorf("failed to write CSV record: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL provided", shared.ErrInvalidArgument)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdown
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdown writes {dir}/README.md for the snapshot and, when the track has a cover, {dir}/cover.jpg.
//
// A failed cover download falls back to linking the remote image.
func WriteMarkdown(ctx context.Context, client *http.Client, snap *models.PlaybackSnapshot, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = "nowplaying"
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if snap != nil && snap.IsPlaying && snap.AlbumCover != "" {
		imageData, err := DownloadImage(ctx, client, snap.AlbumCover)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, ToMarkdown(snap, coverImageFilename), 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// AppendCSV appends one record to path, writing the header row when the file is new or empty.
func AppendCSV(snap *models.PlaybackSnapshot, at time.Time, path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat CSV file: %w", err)
	}

	data, err := ToCSV(snap, at, info.Size() == 0)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}
