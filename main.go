package main

import "hitched-scraper/cmd"

func main() {
	cmd.Execute()
}
