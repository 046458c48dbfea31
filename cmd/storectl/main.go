// Command storectl inspects and maintains a storefront deployment: stored
// session identities, the route guard and the product catalog.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(newApp()).Execute(); err != nil {
		os.Exit(1)
	}
}
