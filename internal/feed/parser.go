package feed

import (
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"

	"github.com/pders01/forumsearch/internal/storage"
)

// importNamespace seeds the name-based ids of imported articles so the same
// item always maps to the same article.
var importNamespace = uuid.MustParse("0d7f5c8e-6c43-4b8a-9a53-2f4f1e6b7d10")

var (
	tagRegex   = regexp.MustCompile(`<[^>]*>`)
	spaceRegex = regexp.MustCompile(`[ \t]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

type Parser struct {
	parser *gofeed.Parser
	now    func() time.Time
}

func NewParser() *Parser {
	return &Parser{
		parser: gofeed.NewParser(),
		now:    time.Now,
	}
}

// Parse turns every item of an RSS, Atom or JSON feed into an article filed
// under sectionID.
func (p *Parser) Parse(reader io.Reader, sectionID string) ([]*storage.Article, error) {
	feed, err := p.parser.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	fetched := p.now().UTC().Truncate(time.Second)
	articles := make([]*storage.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		article := &storage.Article{
			ID:          generateID(sectionID, item),
			SectionID:   sectionID,
			AuthorID:    authorOf(item, feed),
			Title:       strings.TrimSpace(item.Title),
			Tags:        item.Categories,
			RawContent:  toMarkdown(getContent(item)),
			CreatedTime: fetched,
			UpdatedTime: fetched,
		}

		if item.PublishedParsed != nil {
			article.CreatedTime = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			article.CreatedTime = item.UpdatedParsed.UTC()
		}
		if item.UpdatedParsed != nil {
			article.UpdatedTime = item.UpdatedParsed.UTC()
		} else {
			article.UpdatedTime = article.CreatedTime
		}

		if article.Title == "" {
			article.Title = firstLine(article.RawContent)
		}

		articles = append(articles, article)
	}

	return articles, nil
}

func getContent(item *gofeed.Item) string {
	if item.Content != "" {
		return item.Content
	}
	return item.Description
}

func authorOf(item *gofeed.Item, feed *gofeed.Feed) string {
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	for _, a := range feed.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}

// toMarkdown converts HTML item bodies to markdown, the format articles are
// stored and rendered in. Plain text passes through.
func toMarkdown(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return plainText(s)
	}
	return strings.TrimSpace(md)
}

// plainText drops markup so only readable words reach the article body.
func plainText(s string) string {
	s = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n", "</p>", "\n\n").Replace(s)
	s = tagRegex.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = spaceRegex.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLines.ReplaceAllString(s, "\n\n"))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	if r := []rune(line); len(r) > 80 {
		line = string(r[:80])
	}
	return line
}

// generateID derives a stable id from the item's GUID, falling back to its
// link and then its title.
func generateID(sectionID string, item *gofeed.Item) uuid.UUID {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	if key == "" {
		key = item.Title
	}
	if key == "" {
		return uuid.New()
	}
	return uuid.NewSHA1(importNamespace, []byte(sectionID+":"+key))
}
