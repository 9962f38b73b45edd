// @title           Merchant App API
// @version         1.0
// @description     Local API of the merchant runtime: session gate, business setup, orders, wallet and locations.
// @BasePath        /
package main

import (
	"os"

	"github.com/lalaba/merchant-app/cmd/merchant/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
