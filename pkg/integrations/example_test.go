package integrations_test

import (
	"fmt"

	"github.com/matzehuels/blueprint/pkg/integrations"
)

func ExampleJoinURL() {
	fmt.Println(integrations.JoinURL("http://localhost:8080/", "api", "v1", "repositories"))
	fmt.Println(integrations.JoinURL("http://localhost:8080", "api", "v1", "repositories", "a b/c"))
	// Output:
	// http://localhost:8080/api/v1/repositories
	// http://localhost:8080/api/v1/repositories/a%20b%2Fc
}
