package main

import (
	"github.com/corray333/food-delivery/internal/app"
	"github.com/corray333/food-delivery/internal/config"
)

func main() {
	config.MustInit()
	app.MustNewApp().Run()
}
