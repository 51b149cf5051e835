package main

import "github.com/datatrails/go-datatrails-common/logger"

func main() {
	defer logger.OnExit()
	execute()
}
