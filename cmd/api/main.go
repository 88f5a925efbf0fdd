package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/coursedeck/backend/internal/app"
)

func main() {
	a := app.NewApp(context.Background())
	lambda.Start(a.HandleRequest)
}
