package scene_test

import (
	"fmt"

	"github.com/isaflow/isaflow/pkg/config"
	"github.com/isaflow/isaflow/pkg/scene"
)

func ExampleFlow() {
	flow := scene.New(config.Default(), nil)

	za, _ := flow.DeclVector("Za", 128, 4)
	zd, _ := flow.DeclVector("Zd", 128, 4)

	elem, _ := flow.ReadElem(za, 32, 0, 0, "operand")
	flow.AssignElem(elem, zd, 32, 0, 0)

	timeline, _ := flow.Timeline()
	fmt.Println(timeline.StepCount())
	// Output: 3
}
