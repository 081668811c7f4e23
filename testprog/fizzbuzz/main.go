// Command fizzbuzz is a fixture program with a known branch structure. It
// exists to generate predictable tracefiles for covkit's own tests.
package main

import "fmt"

func main() {
	for n := 1; n <= 15; n++ {
		fmt.Println(Classify(n))
	}
}
