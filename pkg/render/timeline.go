package render

import (
	"encoding/json"

	"github.com/isaflow/isaflow/pkg/object"
)

// Step is one playback unit: everything in Animations plays concurrently,
// framed by object additions and removals.
type Step struct {
	Camera       *CameraShot
	AddBefore    []object.Object
	RemoveBefore []object.Object
	Animations   []Animation
	AddAfter     []object.Object
	RemoveAfter  []object.Object
	Wait         float64
}

// Timeline is the recorded animation sequence of one scene.
type Timeline struct {
	Title string
	Steps []Step
}

// NewTimeline creates an empty timeline.
func NewTimeline(title string) *Timeline {
	return &Timeline{Title: title}
}

// Append records one step.
func (t *Timeline) Append(step Step) {
	t.Steps = append(t.Steps, step)
}

// StepCount returns the number of recorded steps.
func (t *Timeline) StepCount() int { return len(t.Steps) }

// ObjectRef is the serialized view of an object at recording time.
type ObjectRef struct {
	Handle string  `json:"handle" bson:"handle"`
	Kind   string  `json:"kind" bson:"kind"`
	Label  string  `json:"label,omitempty" bson:"label,omitempty"`
	Color  string  `json:"color,omitempty" bson:"color,omitempty"`
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
}

// AnimationRecord is the serialized view of one animation.
type AnimationRecord struct {
	Verb    string            `json:"verb" bson:"verb"`
	Objects []ObjectRef       `json:"objects,omitempty" bson:"objects,omitempty"`
	X       *float64          `json:"x,omitempty" bson:"x,omitempty"`
	Y       *float64          `json:"y,omitempty" bson:"y,omitempty"`
	Anims   []AnimationRecord `json:"anims,omitempty" bson:"anims,omitempty"`
}

// StepRecord is the serialized view of one step.
type StepRecord struct {
	Index        int               `json:"index" bson:"index"`
	Camera       *CameraShot       `json:"camera,omitempty" bson:"camera,omitempty"`
	AddBefore    []ObjectRef       `json:"add_before,omitempty" bson:"add_before,omitempty"`
	RemoveBefore []ObjectRef       `json:"remove_before,omitempty" bson:"remove_before,omitempty"`
	Animations   []AnimationRecord `json:"animations" bson:"animations"`
	AddAfter     []ObjectRef       `json:"add_after,omitempty" bson:"add_after,omitempty"`
	RemoveAfter  []ObjectRef       `json:"remove_after,omitempty" bson:"remove_after,omitempty"`
	Wait         float64           `json:"wait,omitempty" bson:"wait,omitempty"`
}

// TimelineRecord is the serialized view of a whole timeline, shared by the
// JSON sink and the timeline store.
type TimelineRecord struct {
	Title string       `json:"title,omitempty" bson:"title,omitempty"`
	Steps []StepRecord `json:"steps" bson:"steps"`
}

// Ref captures an object's current state into a serializable reference.
func Ref(obj object.Object) ObjectRef {
	x, y := obj.Center()
	return ObjectRef{
		Handle: obj.Handle().String(),
		Kind:   obj.Kind().String(),
		Label:  obj.Label(),
		Color:  string(obj.Color()),
		X:      x,
		Y:      y,
	}
}

func refs(objs []object.Object) []ObjectRef {
	if len(objs) == 0 {
		return nil
	}
	out := make([]ObjectRef, len(objs))
	for i, obj := range objs {
		out[i] = Ref(obj)
	}
	return out
}

func record(a Animation) AnimationRecord {
	rec := AnimationRecord{Verb: a.Name()}
	switch anim := a.(type) {
	case Move:
		rec.Objects = refs(anim.Objects())
		x, y := anim.X, anim.Y
		rec.X, rec.Y = &x, &y
	case Group:
		for _, sub := range anim.Anims {
			rec.Anims = append(rec.Anims, record(sub))
		}
	default:
		rec.Objects = refs(a.Objects())
	}
	return rec
}

// Record flattens the timeline into its serialized form.
func (t *Timeline) Record() TimelineRecord {
	out := TimelineRecord{Title: t.Title, Steps: make([]StepRecord, len(t.Steps))}
	for i, step := range t.Steps {
		rec := StepRecord{
			Index:        i,
			Camera:       step.Camera,
			AddBefore:    refs(step.AddBefore),
			RemoveBefore: refs(step.RemoveBefore),
			AddAfter:     refs(step.AddAfter),
			RemoveAfter:  refs(step.RemoveAfter),
			Wait:         step.Wait,
		}
		rec.Animations = make([]AnimationRecord, len(step.Animations))
		for j, a := range step.Animations {
			rec.Animations[j] = record(a)
		}
		out.Steps[i] = rec
	}
	return out
}

// RenderJSON serializes the timeline for file output.
func RenderJSON(t *Timeline) ([]byte, error) {
	return json.MarshalIndent(t.Record(), "", "  ")
}
