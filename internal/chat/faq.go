package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FAQ holds the support knowledge base grounding the assistant.
type FAQ struct {
	Sections []Section
}

// Section groups question/answer pairs under a topic.
type Section struct {
	Name    string
	Entries []Entry
}

// Entry is one question/answer pair.
type Entry struct {
	Question string
	Answer   string
}

// faqFile mirrors the knowledge base JSON layout.
type faqFile struct {
	Root struct {
		Sections []struct {
			SecName string `json:"sec_name"`
			SecData []struct {
				Q string `json:"q"`
				A string `json:"a"`
			} `json:"sec_data"`
		} `json:"sections"`
	} `json:"iOSfaqs"`
}

// LoadFAQ reads the knowledge base from a JSON file.
func LoadFAQ(path string) (*FAQ, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read faq file: %w", err)
	}

	var file faqFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse faq file: %w", err)
	}

	faq := &FAQ{}
	for _, s := range file.Root.Sections {
		sec := Section{Name: s.SecName}
		for _, d := range s.SecData {
			sec.Entries = append(sec.Entries, Entry{Question: d.Q, Answer: d.A})
		}
		faq.Sections = append(faq.Sections, sec)
	}
	return faq, nil
}

// Context renders the knowledge base as a system prompt grounding block.
func (f *FAQ) Context() string {
	if f == nil || len(f.Sections) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Answer using the following rail service FAQ.\n")
	for _, sec := range f.Sections {
		fmt.Fprintf(&b, "\n## %s\n", sec.Name)
		for _, e := range sec.Entries {
			fmt.Fprintf(&b, "Q: %s\nA: %s\n", e.Question, e.Answer)
		}
	}
	return b.String()
}
