package report

import (
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"

	"github.com/gotrs-io/snipeit-e2e/internal/scenario"
)

// JUnit writes junit.xml with one test case per scenario.
type JUnit struct{}

func (JUnit) Name() string { return "junit" }

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Name       string             `xml:"name,attr"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Skipped    int                `xml:"skipped,attr"`
	Time       string             `xml:"time,attr"`
	Timestamp  string             `xml:"timestamp,attr"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName     xml.Name             `xml:"testcase"`
	Classname   string               `xml:"classname,attr"`
	Name        string               `xml:"name,attr"`
	Time        string               `xml:"time,attr"`
	SkipMessage *jUnitXMLSkipMessage `xml:"skipped,omitempty"`
	Failure     *jUnitXMLFailure     `xml:"failure,omitempty"`
}

type jUnitXMLSkipMessage struct {
	Message string `xml:"message,attr"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

func (JUnit) Write(dir string, results *scenario.Results) (string, error) {
	suite := jUnitXMLTestSuite{
		Name:      "snipeit-e2e",
		Tests:     len(results.Scenarios),
		Failures:  results.Count(scenario.Failed),
		Skipped:   results.Count(scenario.Skipped),
		Time:      seconds(results.Duration()),
		Timestamp: results.Started.UTC().Format("2006-01-02T15:04:05"),
		Properties: []jUnitXMLProperty{
			{Name: "run.id", Value: results.RunID.String()},
		},
	}
	for _, r := range results.Scenarios {
		tc := jUnitXMLTestCase{
			Classname: "snipeit",
			Name:      r.Name,
			Time:      seconds(r.Duration),
		}
		switch r.Outcome {
		case scenario.Skipped:
			tc.SkipMessage = &jUnitXMLSkipMessage{Message: r.Message()}
		case scenario.Failed:
			var details []string
			if step := r.FailedStep(); step != "" {
				details = append(details, "step: "+step)
			}
			if r.URL != "" {
				details = append(details, "url: "+r.URL)
			}
			if r.Screenshot != "" {
				details = append(details, "screenshot: "+r.Screenshot)
			}
			tc.Failure = &jUnitXMLFailure{
				Message:  r.Message(),
				Type:     failureType(r.Err),
				Contents: strings.Join(details, "\n"),
			}
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	doc := jUnitXMLDocument{Suites: []jUnitXMLTestSuite{suite}}
	bytes, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	bytes = append([]byte(xml.Header), append(bytes, '\n')...)

	path := filepath.Join(dir, "junit.xml")
	return path, os.WriteFile(path, bytes, 0o644)
}
