package main

import "tweetstash/cmd/tweetstash/cmd"

func main() {
	cmd.Execute()
}
