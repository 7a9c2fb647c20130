package selection_test

import (
	"fmt"

	"github.com/matzehuels/blueprint/pkg/depgraph"
	"github.com/matzehuels/blueprint/pkg/model"
	"github.com/matzehuels/blueprint/pkg/selection"
)

func ExampleCompute() {
	notebooks := []model.Notebook{
		{ID: "load", Path: "etl/load.ipynb", Outputs: []string{"/raw"}},
		{ID: "clean", Path: "etl/clean.ipynb", Inputs: []string{"/raw"}, Outputs: []string{"/clean"}},
		{ID: "report", Path: "report.ipynb", Inputs: []string{"/clean"}},
	}
	g, _ := depgraph.FromNotebooks(notebooks)
	h := selection.BuildHierarchy(notebooks, selection.Changes{})

	s := selection.Compute(g, h, []string{"report"})
	fmt.Println("selected:", s.Selected)
	fmt.Println("disabled:", s.Disabled)

	s = selection.Toggle(g, h, s, "report")
	fmt.Println("empty:", s.Empty())
	// Output:
	// selected: [clean load report]
	// disabled: [clean load]
	// empty: true
}
