package report

import "sort"

// Counts is a found/hit pair for one coverage family.
type Counts struct {
	Found int
	Hit   int
}

// Percent returns hit/found as a percentage, or 100 when nothing was found.
func (c Counts) Percent() float64 {
	if c.Found == 0 {
		return 100
	}
	return float64(c.Hit) / float64(c.Found) * 100
}

func (c *Counts) add(o Counts) {
	c.Found += o.Found
	c.Hit += o.Hit
}

// FileSummary is the per-file roll-up of a report.
type FileSummary struct {
	File     string
	Lines    Counts
	Funcs    Counts
	Branches Counts
}

// Summary rolls the report up per source file, collapsing test names, plus
// a grand total. Files are ordered by path.
func (r *Report) Summary() (files []FileSummary, total FileSummary) {
	byFile := make(map[string]*FileSummary)
	for key, sect := range r.Sections {
		fs, ok := byFile[key.File]
		if !ok {
			fs = &FileSummary{File: key.File}
			byFile[key.File] = fs
		}
		fs.Lines.add(sect.lineCounts())
		fs.Funcs.add(sect.funcCounts())
		fs.Branches.add(sect.branchCounts())
	}

	for _, fs := range byFile {
		files = append(files, *fs)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].File < files[j].File })

	for _, fs := range files {
		total.Lines.add(fs.Lines)
		total.Funcs.add(fs.Funcs)
		total.Branches.add(fs.Branches)
	}
	return files, total
}

func (s *Section) lineCounts() Counts {
	c := Counts{Found: len(s.Lines)}
	for _, ln := range s.Lines {
		if ln.Count > 0 {
			c.Hit++
		}
	}
	return c
}

func (s *Section) funcCounts() Counts {
	c := Counts{Found: len(s.Funcs)}
	for _, fn := range s.Funcs {
		if fn.Count > 0 {
			c.Hit++
		}
	}
	return c
}

func (s *Section) branchCounts() Counts {
	c := Counts{Found: len(s.Branches)}
	for _, br := range s.Branches {
		if br.Taken > 0 {
			c.Hit++
		}
	}
	return c
}
