package main

import (
	"github.com/OFFIS-RIT/lecturemap/internal/bootstrap"
	"github.com/OFFIS-RIT/lecturemap/internal/server"
	"github.com/OFFIS-RIT/lecturemap/internal/util"
)

func main() {
	util.LoadEnv()
	bootstrap.InitLogger("server")

	server.Init()
}
