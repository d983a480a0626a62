package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/matzehuels/fractalview/pkg/cplx"
	"github.com/matzehuels/fractalview/pkg/errors"
	"github.com/matzehuels/fractalview/pkg/fractal"
	"github.com/matzehuels/fractalview/pkg/pipeline"
	"github.com/matzehuels/fractalview/pkg/raster"
)

// Messages sent on /ws/refine. Every pass message is followed by a binary
// message holding the PNG of that pass.
type (
	passMessage struct {
		Type    string          `json:"type"` // "pass"
		Variant fractal.Variant `json:"variant"`
		Stride  int             `json:"stride"`
		Final   bool            `json:"final"`
		Width   int             `json:"width"`
		Height  int             `json:"height"`
		Inside  float64         `json:"inside"` // fraction of lattice samples inside
	}
	doneMessage struct {
		Type   string `json:"type"` // "done"
		Passes int    `json:"passes"`
	}
	errorMessage struct {
		Type    string      `json:"type"` // "error"
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	}
)

type incoming struct {
	req renderRequest
	err error
}

// handleRefine streams successive refinement over a websocket. The client
// sends render requests as JSON text messages; each request cancels the
// schedule still running for the previous one.
func (s *Server) handleRefine(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.cfg.Server.Origins})
	if err != nil {
		loggerFrom(r.Context()).Warn("websocket accept failed", "error", err)
		return
	}
	defer c.CloseNow()

	ctx := r.Context()
	logger := loggerFrom(ctx)
	requests := make(chan incoming)
	go s.readRequests(ctx, c, requests)

	var active activeStream
	defer active.stop()

	for in := range requests {
		if in.err != nil {
			s.sendError(ctx, c, in.err)
			continue
		}
		req := in.req
		active.start(ctx, func(ctx context.Context) {
			if err := s.stream(ctx, c, req); err != nil && ctx.Err() == nil {
				logger.Debug("refine stream ended", "error", err)
			}
		})
	}
	active.stop()
	c.Close(websocket.StatusNormalClosure, "")
}

// activeStream holds the one refinement schedule running on a connection.
type activeStream struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// start stops the running schedule, if any, and runs fn in a new goroutine
// with a context derived from ctx.
func (a *activeStream) start(ctx context.Context, fn func(context.Context)) {
	a.stop()
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	a.cancel, a.done = cancel, done
	go func() {
		defer close(done)
		fn(ctx)
	}()
}

// stop cancels the running schedule and waits for it to return.
func (a *activeStream) stop() {
	if a.cancel == nil {
		return
	}
	a.cancel()
	<-a.done
	a.cancel, a.done = nil, nil
}

// readRequests decodes client messages until the connection closes.
// Malformed messages are reported without ending the session.
func (s *Server) readRequests(ctx context.Context, c *websocket.Conn, out chan<- incoming) {
	defer close(out)
	for {
		_, data, err := c.Read(ctx)
		if err != nil {
			if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				loggerFrom(ctx).Debug("websocket read ended", "error", err)
			}
			return
		}
		in := incoming{req: defaultRender(s.cfg)}
		if err := json.Unmarshal(data, &in.req); err != nil {
			if errors.GetCode(err) == "" {
				err = errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode refine request")
			}
			in.err = err
		}
		select {
		case out <- in:
		case <-ctx.Done():
			return
		}
	}
}

// stream runs one refinement schedule and sends every pass of the
// requested output.
func (s *Server) stream(ctx context.Context, c *websocket.Conn, req renderRequest) error {
	opts, err := req.options()
	if err != nil {
		s.sendError(ctx, c, err)
		return err
	}

	e, err := fractal.NewExplorer(opts.Width, opts.Height, opts.Params)
	if err != nil {
		s.sendError(ctx, c, err)
		return err
	}
	defer e.Close()
	e.Refiner().Delay = s.cfg.Refine.Delay.Duration
	e.Refiner().Logger = loggerFrom(ctx)

	ropts := raster.Options{Scheme: opts.Scheme, Mode: opts.Mode, Histogram: opts.Histogram}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var writeErr error
	passes := 0
	err = e.Refiner().Run(ctx, opts.StartStride, func(p fractal.Pass) {
		if writeErr != nil || !wanted(opts.Output, p.Variant) {
			return
		}
		if writeErr = s.sendPass(ctx, c, e, p, ropts, opts.Orbit); writeErr != nil {
			cancel()
			return
		}
		passes++
	})
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		if !errors.Is(err, errors.ErrCodeCancelled) {
			s.sendError(ctx, c, err)
		}
		return err
	}
	return wsjson.Write(ctx, c, doneMessage{Type: "done", Passes: passes})
}

func (s *Server) sendPass(ctx context.Context, c *websocket.Conn, e *fractal.Explorer, p fractal.Pass, ropts raster.Options, orbit *cplx.Number) error {
	img := raster.Render(p.Grid, ropts)
	if orbit != nil {
		set := e.Set(p.Variant)
		raster.DrawOrbit(img, set.Mapper(), set.Track(*orbit), ropts.Scheme.Overlay())
	}
	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf, img); err != nil {
		return err
	}

	msg := passMessage{
		Type:    "pass",
		Variant: p.Variant,
		Stride:  p.Stride,
		Final:   p.Final,
		Width:   p.Grid.Width,
		Height:  p.Grid.Height,
		Inside:  latticeInside(p.Grid),
	}
	if err := wsjson.Write(ctx, c, msg); err != nil {
		return err
	}
	return c.Write(ctx, websocket.MessageBinary, buf.Bytes())
}

func (s *Server) sendError(ctx context.Context, c *websocket.Conn, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	_ = wsjson.Write(ctx, c, errorMessage{Type: "error", Code: code, Message: errors.UserMessage(err)})
}

func wanted(output string, v fractal.Variant) bool {
	switch output {
	case pipeline.OutputMandelbrot:
		return v == fractal.Mandelbrot
	case pipeline.OutputJulia:
		return v == fractal.Julia
	}
	return true
}

// latticeInside returns the fraction of lattice samples at the grid's
// stride that reached the cap.
func latticeInside(g fractal.GridView) float64 {
	stride := max(g.Stride, 1)
	inside := 0
	for y := 0; y < g.Height; y += stride {
		for x := 0; x < g.Width; x += stride {
			if g.Counts[y*g.Width+x] >= g.MaxIterations {
				inside++
			}
		}
	}
	return float64(inside) / float64(g.Samples())
}
