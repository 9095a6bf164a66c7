package domain

// TestCase is one invocation of the graded function. Values are plain JSON
// values; numbers should be decoded as json.Number to keep integers exact.
type TestCase struct {
	Args     []interface{} `json:"args" yaml:"args"`
	Expected interface{}   `json:"expected" yaml:"expected"`
}
