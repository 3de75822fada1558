package util

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// AppendToFile opens the file in append mode (creating it if needed),
// writes each content as a line and closes it again
func AppendToFile(savePath string, content ...string) error {
	f, err := os.OpenFile(savePath, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}

	defer f.Close()

	for _, s := range content {
		if _, err = f.WriteString(s + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// AppendRow appends a single tab separated line
func AppendRow(savePath string, fields ...string) error {
	return AppendToFile(savePath, strings.Join(fields, "\t"))
}

// FormatFloat prints a float the shortest way that reads back exactly
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// ReadColumns reads a tab separated file and returns the numeric columns.
// Lines that do not parse (headers) are skipped.
func ReadColumns(savePath string) ([][]float64, error) {
	f, err := os.Open(savePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	columns := make([][]float64, 0)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(strings.TrimSpace(scanner.Text()), "\t")
		row := make([]float64, len(fields))
		ok := true
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				ok = false
				break
			}
			row[i] = v
		}
		if !ok {
			continue
		}
		for len(columns) < len(row) {
			columns = append(columns, make([]float64, 0))
		}
		for i, v := range row {
			columns[i] = append(columns[i], v)
		}
	}
	return columns, scanner.Err()
}

// EnsureDir creates the directory and its parents if missing
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return os.MkdirAll(dir, os.ModePerm)
	}
	return nil
}
