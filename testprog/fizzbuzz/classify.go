package main

import "strconv"

// Classify reports whether n is divisible by 3, by 5, by both, or neither,
// and returns the matching label.
func Classify(n int) string {
	if n%3 == 0 && n%5 == 0 {
		return "FizzBuzz"
	}
	if n%3 == 0 {
		return "Fizz"
	}
	if n%5 == 0 {
		return "Buzz"
	}
	return strconv.Itoa(n)
}
