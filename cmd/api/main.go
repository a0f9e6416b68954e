// @title           Splitledger API
// @version         1.0
// @description     Shared expense ledger: expenses, splits, settlements and balances.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import "github.com/fkhayef/splitledger/internal/cli"

func main() {
	cli.Execute()
}
