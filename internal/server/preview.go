package server

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"net/http"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/abhinaya/internal/capture"
	"github.com/ayusman/abhinaya/internal/detector"
	"github.com/ayusman/abhinaya/internal/landmark"
)

var (
	boneColor  = color.RGBA{R: 0, G: 200, B: 255, A: 255}
	jointColor = color.RGBA{R: 255, G: 80, B: 0, A: 255}
	handColor  = color.RGBA{R: 0, G: 255, B: 120, A: 255}
)

// upperBodyBones connects the semantic joints drawn on the preview.
var upperBodyBones = [][2]int{
	{landmark.LeftShoulder, landmark.RightShoulder},
	{landmark.LeftShoulder, landmark.LeftElbow},
	{landmark.LeftElbow, landmark.LeftWrist},
	{landmark.RightShoulder, landmark.RightElbow},
	{landmark.RightElbow, landmark.RightWrist},
	{landmark.LeftShoulder, landmark.LeftHip},
	{landmark.RightShoulder, landmark.RightHip},
	{landmark.LeftHip, landmark.RightHip},
}

// PreviewHandler serves MJPEG frames from the camera with the detected
// upper body and hands drawn on top, so performers can check framing
// before an attempt.
type PreviewHandler struct {
	camera   capture.Camera
	detector detector.Detector
}

// NewPreviewHandler creates a new PreviewHandler.
func NewPreviewHandler(camera capture.Camera, d detector.Detector) *PreviewHandler {
	return &PreviewHandler{camera: camera, detector: d}
}

// ServeHTTP streams annotated MJPEG frames until the client disconnects or
// the camera stops. The camera is opened for the duration of the stream if
// it was closed.
func (h *PreviewHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !h.camera.IsOpen() {
		if err := h.camera.Open(); err != nil {
			http.Error(w, "Camera unavailable", http.StatusServiceUnavailable)
			return
		}
		defer h.camera.Close()
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	interval := time.Second / time.Duration(max(h.camera.FPS(), 1))
	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		frame, err := h.camera.ReadFrame()
		if err != nil {
			// A practice run that shares the camera may close it under us.
			if errors.Is(err, capture.ErrEndOfStream) || errors.Is(err, capture.ErrCameraNotOpen) {
				return
			}
			time.Sleep(100 * time.Millisecond)
			continue
		}

		if f, err := h.detector.Detect(frame); err == nil {
			drawLandmarks(frame, f)
		} else {
			log.Printf("preview: detect: %v", err)
		}

		buf, err := gocv.IMEncode(".jpg", *frame)
		frame.Close()
		if err != nil {
			continue
		}

		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", buf.Len())
		w.Write(buf.GetBytes())
		fmt.Fprintf(w, "\r\n")
		buf.Close()

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(interval)
	}
}

// drawLandmarks draws the upper-body skeleton and hand points of f onto img.
func drawLandmarks(img *gocv.Mat, f landmark.Frame) {
	width, height := img.Cols(), img.Rows()
	pt := func(p landmark.Point) image.Point {
		return image.Pt(int(p.X*float64(width)), int(p.Y*float64(height)))
	}

	if body, ok := landmark.LiveSkeleton.Select(f.Pose); ok {
		for _, b := range upperBodyBones {
			gocv.Line(img, pt(body[b[0]]), pt(body[b[1]]), boneColor, 2)
		}
		for _, p := range body {
			gocv.Circle(img, pt(p), 4, jointColor, -1)
		}
	}

	for _, hand := range [][]landmark.Point{f.RightHand, f.LeftHand} {
		if !landmark.HasHand(hand) {
			continue
		}
		for _, p := range hand {
			gocv.Circle(img, pt(p), 2, handColor, -1)
		}
	}
}
