package main

import "michelin-scraper/cmd"

func main() {
	cmd.Execute()
}
