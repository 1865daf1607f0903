package payment

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// SurfaceName is the window name the checkout popup is opened under.
const SurfaceName = "Stripe Checkout"

// Surface is a handle to an opened checkout window.
type Surface interface {
	Closed() bool
	Focus()
}

// SurfaceOpener opens the checkout target as a separate browsing surface.
// ok is false when the surface could not be opened (e.g. a blocked popup).
type SurfaceOpener interface {
	Open(target, name string, features WindowFeatures) (s Surface, ok bool)
}

// ScreenSize is the client screen used to center the popup.
type ScreenSize struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// WindowFeatures is the popup geometry.
type WindowFeatures struct {
	Width, Height, Left, Top int
}

const (
	popupWidth  = 480
	popupHeight = 700
)

// CenteredFeatures sizes the checkout popup and centers it on screen.
func CenteredFeatures(screen ScreenSize) WindowFeatures {
	return WindowFeatures{
		Width:  popupWidth,
		Height: popupHeight,
		Left:   screen.Width/2 - popupWidth/2,
		Top:    screen.Height/2 - popupHeight/2,
	}
}

// String renders the features in window.open syntax.
func (f WindowFeatures) String() string {
	return fmt.Sprintf("width=%d,height=%d,left=%d,top=%d", f.Width, f.Height, f.Left, f.Top)
}

// RemoteSurface stands for a popup owned by a remote client, which reports
// the close through MarkClosed.
type RemoteSurface struct {
	Target   string
	Features WindowFeatures
	closed   atomic.Bool
}

func (r *RemoteSurface) Closed() bool { return r.closed.Load() }
func (r *RemoteSurface) Focus()       {}

// MarkClosed records that the client's popup went away.
func (r *RemoteSurface) MarkClosed() { r.closed.Store(true) }

// RemoteOpener hands out RemoteSurfaces and remembers the latest one.
type RemoteOpener struct {
	mu   sync.Mutex
	last *RemoteSurface
}

func (o *RemoteOpener) Open(target, _ string, features WindowFeatures) (Surface, bool) {
	s := &RemoteSurface{Target: target, Features: features}
	o.mu.Lock()
	o.last = s
	o.mu.Unlock()
	return s, true
}

// Current returns the most recently opened surface, or nil.
func (o *RemoteOpener) Current() *RemoteSurface {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}
