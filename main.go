package main

import "algoprep/internal/server"

func main() {
	server.StartServer()
}
