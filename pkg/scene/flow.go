// Package scene builds animated ISA data-flow diagrams.
//
// A Flow combines the placement grid, the animation dependency graph, the
// color map and the element reference tracker behind one imperative API:
// declare registers and units, read and move elements between them, close
// sections. The flow records everything; Timeline and Play turn the recorded
// graph into an ordered sequence of playback steps.
//
// A Flow drives one diagram and is not safe for concurrent use.
package scene

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/isaflow/isaflow/pkg/anim"
	"github.com/isaflow/isaflow/pkg/colormap"
	"github.com/isaflow/isaflow/pkg/config"
	"github.com/isaflow/isaflow/pkg/errors"
	"github.com/isaflow/isaflow/pkg/object"
	"github.com/isaflow/isaflow/pkg/place"
	"github.com/isaflow/isaflow/pkg/render"
)

// cameraEpsilon is the smallest reframe worth emitting. Bounding-box
// changes below it keep the previous camera.
const cameraEpsilon = 1e-3

// Flow is the diagram construction state machine.
// The zero value is not usable - use New.
type Flow struct {
	cfg    *config.Config
	logger *log.Logger

	placement *place.Map
	graph     *anim.Graph
	colors    *colormap.Map
	refs      *anim.RefCounts

	title string

	// Zoomed display geometry and the last emitted camera frame.
	dispW, dispH float64
	camScale     float64
	camX, camY   float64
}

// New creates a flow over the given configuration. A nil cfg selects the
// defaults, a nil logger discards log output.
func New(cfg *config.Config, logger *log.Logger) *Flow {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	strategy := place.RowThenColumn
	if cfg.Strategy == config.StrategyColumnThenRow {
		strategy = place.ColumnThenRow
	}

	return &Flow{
		cfg:       cfg,
		logger:    logger,
		placement: place.New(cfg.FrameWidth, cfg.FrameHeight, strategy),
		graph:     &anim.Graph{},
		colors:    colormap.New(colormap.White, nil),
		refs:      anim.NewRefCounts(),
		dispW:     float64(cfg.FrameWidth),
		dispH:     float64(cfg.FrameHeight)/2 + 3,
		camScale:  1.0,
	}
}

// Config returns the flow's configuration.
func (f *Flow) Config() *config.Config { return f.cfg }

// Title returns the diagram title.
func (f *Flow) Title() string { return f.title }

// Graph returns the animation dependency graph, e.g. for DOT output.
func (f *Flow) Graph() *anim.Graph { return f.graph }

// Placement returns the placement grid, e.g. for snapshot rendering.
func (f *Flow) Placement() *place.Map { return f.placement }

// SceneObjects returns every grid-placed object plus its attachments, for
// snapshot rendering of the final diagram state.
func (f *Flow) SceneObjects() []object.Object {
	var objs []object.Object
	for _, key := range f.placement.Keys() {
		item, ok := f.placement.Item(key)
		if !ok {
			continue
		}
		obj, ok := item.(object.Object)
		if !ok {
			continue
		}
		objs = append(objs, obj)
		if att, ok := obj.(object.Attacher); ok {
			objs = append(objs, att.Attachments()...)
		}
	}
	return objs
}

// DrawTitle sets the diagram title shown above the animation.
func (f *Flow) DrawTitle(title string) {
	f.title = title
}

// DrawSubtitle fades in a caption above the diagram.
func (f *Flow) DrawSubtitle(text string) (*object.Subtitle, error) {
	sub := object.NewSubtitle(text, colormap.White)
	sub.MoveTo(f.placement.OriginX(), -1)

	_, err := f.graph.Add(anim.Spec{
		Anim: render.FadeIn{Items: []object.Object{sub}},
		Dst:  []object.Object{sub},
	})
	if err != nil {
		return nil, err
	}
	return sub, nil
}

// StartSection opens a new logical section: a fresh subtitle and a rewound
// color cycle. Sections end with EndSection.
func (f *Flow) StartSection(subtitle string) error {
	if _, err := f.DrawSubtitle(subtitle); err != nil {
		return err
	}
	f.colors.Reset()
	f.logger.Debug("section started", "subtitle", subtitle)
	return nil
}

// EndSection closes the current section. wait holds the last step on screen,
// fadeOut clears the scene except for the placed objects named in keep, and
// keepPositions pins kept objects to their cells instead of re-placing them.
//
// The camera reframes to the occupied bounding box when it moved more than
// an epsilon since the previous section.
func (f *Flow) EndSection(wait float64, fadeOut bool, keep []string, keepPositions bool) {
	var keepObjs []object.Object
	for _, key := range keep {
		item, ok := f.placement.Item(key)
		if !ok {
			continue
		}
		if obj, ok := item.(object.Object); ok {
			keepObjs = append(keepObjs, obj)
		}
	}

	camera := f.updateCamera()
	f.graph.EndSection(wait, fadeOut, camera, keepObjs)

	if fadeOut {
		f.placement.Reset(keep, keepPositions)
	}
	f.refs.ClearSources()

	f.logger.Debug("section ended",
		"wait", wait, "fade_out", fadeOut, "kept", len(keepObjs), "camera", camera != nil)
}

// updateCamera compares the occupied bounding box against the current
// camera frame and returns the reframe shot, or nil when the frame barely
// moved. The emitted scale is relative to the previous frame.
func (f *Flow) updateCamera() *render.CameraShot {
	scale := f.placement.Scale(f.dispW, f.dispH)
	x := float64(f.placement.Width()) / 2
	y := f.dispH * scale / 2

	if math.Abs(scale-f.camScale) <= cameraEpsilon &&
		math.Abs(x-f.camX) <= cameraEpsilon &&
		math.Abs(y-f.camY) <= cameraEpsilon {
		return nil
	}

	shot := &render.CameraShot{Scale: scale / f.camScale, X: x, Y: y}
	f.camScale, f.camX, f.camY = scale, x, y
	return shot
}

// steps closes a trailing open section and schedules the graph.
func (f *Flow) steps() ([]render.Step, error) {
	if f.graph.Pending() > 0 {
		f.EndSection(0, false, nil, true)
	}
	return f.graph.Schedule()
}

// Timeline schedules the recorded animations into an ordered timeline.
// A still-open section is closed without fade-out first.
func (f *Flow) Timeline() (*render.Timeline, error) {
	steps, err := f.steps()
	if err != nil {
		return nil, err
	}

	timeline := render.NewTimeline(f.title)
	for _, step := range steps {
		timeline.Append(step)
	}
	f.logger.Info("flow scheduled", "steps", timeline.StepCount())
	return timeline, nil
}

// Renderer plays back scheduled steps. Implementations range from a real
// animation backend to test doubles recording the call sequence.
type Renderer interface {
	ReframeCamera(shot render.CameraShot)
	Add(objs ...object.Object)
	Remove(objs ...object.Object)
	Play(anims ...render.Animation)
	Wait(seconds float64)
}

// Play schedules the recorded animations and replays every step against r:
// camera first, then removals and additions staged before the step, the
// concurrent animation set, the post-step staging and the wait.
func (f *Flow) Play(r Renderer) error {
	steps, err := f.steps()
	if err != nil {
		return err
	}

	for _, step := range steps {
		if step.Camera != nil {
			r.ReframeCamera(*step.Camera)
		}
		if len(step.RemoveBefore) > 0 {
			r.Remove(step.RemoveBefore...)
		}
		if len(step.AddBefore) > 0 {
			r.Add(step.AddBefore...)
		}
		r.Play(step.Animations...)
		if len(step.RemoveAfter) > 0 {
			r.Remove(step.RemoveAfter...)
		}
		if len(step.AddAfter) > 0 {
			r.Add(step.AddAfter...)
		}
		if step.Wait > 0 {
			r.Wait(step.Wait)
		}
	}
	return nil
}

// colorFor resolves an explicit color tag, falling back to a fresh
// auto-generated tag so untagged operations still cycle the palette.
func (f *Flow) colorFor(tag string) colormap.Color {
	if tag == "" {
		tag = f.colors.NextTag()
	}
	return f.colors.Get(tag)
}

// asObjects converts a slice of concrete units into the object interface.
func asObjects[T object.Object](units []T) []object.Object {
	objs := make([]object.Object, len(units))
	for i, u := range units {
		objs[i] = u
	}
	return objs
}

// wrapPlace converts placement contract violations into structured errors.
func wrapPlace(err error, what, key string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "place %s %q", what, key)
}
