// Command addsub is a fixture program with a known mix of taken and
// untaken branches. It exists to generate predictable tracefiles for
// covkit's own tests.
package main

import (
	"fmt"
	"io"
	"os"
)

// run sums the integers in [0, 10) and prints two derived facts about the
// result. With sum=45 neither condition holds, so both print branches stay
// untaken; that is the point of the fixture.
func run(w io.Writer) {
	sum := 0
	for i := 0; i < 10; i++ {
		sum = Add(sum, i)
	}

	fmt.Fprintf(w, "sum=%d\n", sum)

	if sum%10 == 0 {
		fmt.Fprintln(w, "sum is multiple of 10")
	}
	if sum == Mul(5, 11) {
		fmt.Fprintln(w, "sum is 5 * 11")
	}
}

func main() {
	run(os.Stdout)
}
