package export

import (
	"fmt"
	"math"
	"path/filepath"
	"sort"
	"strings"

	"github.com/framecut/framecut-agent/internal/timeline"
)

const defaultFPS = 30

// Events converts timeline elements into EDL events ordered by record in.
// Elements without a source file (text, shapes) cannot be conformed and are
// returned by ID in skipped.
func Events(elems []timeline.Element) (events []Event, skipped []string) {
	skipped = []string{}
	for _, e := range elems {
		if e.SourcePath == "" {
			skipped = append(skipped, e.ID)
			continue
		}
		ev := Event{
			ElementID: e.ID,
			ClipName:  strings.TrimSuffix(filepath.Base(e.SourcePath), filepath.Ext(e.SourcePath)),
			MediaPath: e.SourcePath,
			Track:     "V",
			RecordIn:  e.VisibleStart(),
			RecordOut: e.VisibleEnd(),
		}
		switch {
		case e.Static():
			ev.SourceOut = e.Duration
		default:
			ev.SourceIn = scale(e.Trim.StartTime, e.Speed)
			ev.SourceOut = scale(e.Trim.EndTime, e.Speed)
			if e.Filetype == "audio" || e.Filetype == "mp3" {
				ev.Track = "A"
			}
		}
		events = append(events, ev)
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].RecordIn < events[j].RecordIn })
	return events, skipped
}

func scale(ms int64, speed float64) int64 {
	if speed <= 0 {
		return ms
	}
	return int64(math.Round(float64(ms) * speed))
}

// GenerateEDL renders events as a CMX3600 edit decision list.
func GenerateEDL(events []Event, title string, frameRate float64) string {
	fps := int64(math.Round(frameRate))
	if fps <= 0 {
		fps = defaultFPS
	}
	dropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{"TITLE: " + title}
	if dropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, ev := range events {
		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", ev.Track,
				msToTimecode(ev.SourceIn, fps), msToTimecode(ev.SourceOut, fps),
				msToTimecode(ev.RecordIn, fps), msToTimecode(ev.RecordOut, fps)),
			"* FROM CLIP NAME:  "+ev.ClipName,
			"* MEDIA PATH:  "+ev.MediaPath,
		)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func msToTimecode(ms, fps int64) string {
	totalFrames := int64(math.Round(float64(ms) * float64(fps) / 1000))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	return fmt.Sprintf("%02d:%02d:%02d:%02d", totalSeconds/3600, totalSeconds/60%60, totalSeconds%60, frames)
}
