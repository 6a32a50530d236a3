package project_test

import (
	"fmt"

	"github.com/matzehuels/depconv/pkg/project"
	"github.com/matzehuels/depconv/pkg/requirement"
)

func ExampleRoot_AttachDependencies() {
	root := project.New("demo")
	for _, line := range []string{"six>=1.10", "Six<2", `requests[socks]; python_version >= "3"`} {
		root.AttachDependencies(project.FromRequirement(root, requirement.MustParse(line))...)
	}
	for _, dep := range root.Dependencies {
		fmt.Println(dep, "from", dep.Source)
	}
	// Output:
	// six>=1.10,<2 from demo
	// requests[socks]; python_version >= "3" from demo
}

func ExampleNormalizeName() {
	fmt.Println(project.NormalizeName("Zope.Interface"))
	// Output: zope-interface
}
