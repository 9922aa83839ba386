package capture

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/DaniruKun/boostmeter-overlay/display"
	"github.com/DaniruKun/boostmeter-overlay/imgproc"
	"github.com/DaniruKun/boostmeter-overlay/internal/log"
)

// VideoSource replays recorded gameplay from a video file at its native rate.
type VideoSource struct {
	path          string
	frameInterval int // Number of frames to skip in between handled frames
	frameDelay    time.Duration

	mu    sync.Mutex
	video *gocv.VideoCapture
}

// NewVideoSource opens the video at `filePath`. Only every
// `frameInterval`+1th frame is handed on.
func NewVideoSource(filePath string, frameInterval int) (*VideoSource, error) {
	video, err := gocv.VideoCaptureFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error opening video file %s: %w", filePath, err)
	}

	delay := time.Duration(0)
	if fps := video.Get(gocv.VideoCaptureFPS); fps > 0 {
		delay = time.Duration(float64(time.Second) / fps)
	}

	return &VideoSource{
		path:          filePath,
		frameInterval: frameInterval,
		frameDelay:    delay,
		video:         video,
	}, nil
}

// Run decodes frames until the file ends, handle asks to stop, or ctx is done.
func (v *VideoSource) Run(ctx context.Context, handle Handler) error {
	v.mu.Lock()
	video := v.video
	v.mu.Unlock()
	if video == nil {
		return ErrSourceClosed
	}

	frame := gocv.NewMat()
	defer frame.Close()

	var frameCnt int
	next := time.Now()

	// Frame read loop
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		if ok := video.Read(&frame); !ok {
			log.Info("video ended", "path", v.path)
			return nil
		}

		if frameCnt < v.frameInterval {
			frameCnt++
			continue
		}
		frameCnt = 0

		if frame.Empty() {
			continue
		}

		f, err := imgproc.FrameFromMat(frame)
		if err != nil {
			return fmt.Errorf("convert frame: %w", err)
		}

		stop := handle(Capture{
			Frame:  f,
			Window: display.Window{Width: f.Width, Height: f.Height},
			System: image.Pt(f.Width, f.Height),
		})
		if stop {
			return nil
		}

		// pace the replay so the overlay sees frames at the recorded rate
		next = next.Add(v.frameDelay * time.Duration(v.frameInterval+1))
		if wait := time.Until(next); wait > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
		} else {
			next = time.Now()
		}
	}
}

func (v *VideoSource) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.video == nil {
		return nil
	}
	err := v.video.Close()
	v.video = nil
	return err
}
