package main

import (
	"context"
	"os"

	"github.com/dmitrijs2005/foodlog/internal/client/cli"
)

func main() {

	ctx := context.Background()
	if err := cli.Execute(ctx, os.Args[1:]); err != nil {
		os.Exit(1)
	}

}
