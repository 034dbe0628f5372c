//go:build !lambda

package main

import "deck-recommender/cmd"

func main() {
	cmd.Execute()
}
