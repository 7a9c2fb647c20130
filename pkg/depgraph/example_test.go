package depgraph_test

import (
	"fmt"

	"github.com/matzehuels/blueprint/pkg/depgraph"
	"github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/model"
)

func ExampleFromNotebooks() {
	notebooks := []model.Notebook{
		{ID: "load", Inputs: []string{model.TagStart}, Outputs: []string{"/raw"}},
		{ID: "clean", Inputs: []string{"/raw"}, Outputs: []string{"/clean"}},
		{ID: "report", Inputs: []string{"/clean", "/raw"}, Outputs: []string{model.TagEnd}},
	}
	g, err := depgraph.FromNotebooks(notebooks)
	if err != nil {
		panic(err)
	}
	for _, e := range g.Edges() {
		fmt.Println(e.From, "->", e.To, e.Tags)
	}
	// Output:
	// load -> clean [/raw]
	// clean -> report [/clean]
	// load -> report [/raw]
}

func ExampleFromJobs() {
	jobs := []model.Job{
		{ID: "J1"},
		{ID: "J2", PreviousJobs: []string{"J9"}},
	}
	_, err := depgraph.FromJobs(jobs)
	fmt.Println(errors.IsGraphIntegrity(err))
	// Output:
	// true
}
