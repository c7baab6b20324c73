// Package motivation serves the built-in quote pool.
package motivation

import "math/rand"

// Quote pairs a motivational line with its author.
type Quote struct {
	Text   string
	Author string
}

var quotes = []Quote{
	{"The best way to predict the future is to create it.", "Peter Drucker"},
	{"The secret of getting ahead is getting started.", "Mark Twain"},
	{"It always seems impossible until it's done.", "Nelson Mandela"},
	{"Believe you can and you're halfway there.", "Theodore Roosevelt"},
	{"Your time is limited, don't waste it living someone else's life.", "Steve Jobs"},
	{"The only way to do great work is to love what you do.", "Steve Jobs"},
	{"Success is not final, failure is not fatal: it is the courage to continue that counts.", "Winston S. Churchill"},
	{"The mind is everything. What you think you become.", "Buddha"},
	{"Strive not to be a success, but rather to be of value.", "Albert Einstein"},
	{"The only limit to our realization of tomorrow will be our doubts of today.", "Franklin D. Roosevelt"},
}

// Random picks a quote from the pool.
func Random() Quote {
	return quotes[rand.Intn(len(quotes))]
}
