package document

import (
	"document-archive/internal/db"
	"document-archive/internal/domain"
	"fmt"
	"sort"
	"strings"
	"time"
)

// builder accumulates one entry and remembers what it has already seen.
type builder struct {
	entry   Entry
	authors map[string]struct{}
	topics  map[uint64]struct{}
	// compiled groups only
	children  []*builder
	childByID map[uint64]*builder
	oldest    *time.Time
	newest    *time.Time
}

func newBuilder(entry Entry) *builder {
	entry.Authors = []string{}
	entry.Topics = []TopicRef{}
	return &builder{
		entry:   entry,
		authors: map[string]struct{}{},
		topics:  map[uint64]struct{}{},
	}
}

func (b *builder) addAuthor(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if _, ok := b.authors[name]; ok {
		return
	}
	b.authors[name] = struct{}{}
	b.entry.Authors = append(b.entry.Authors, name)
}

func (b *builder) addTopic(t TopicRef) {
	if t.Name == "" {
		return
	}
	if _, ok := b.topics[t.ID]; ok {
		return
	}
	b.topics[t.ID] = struct{}{}
	b.entry.Topics = append(b.entry.Topics, t)
}

// absorb folds the author and topic columns of one row into b.
func (b *builder) absorb(row Row) {
	if len(row.Authors) > 0 {
		for _, name := range row.Authors {
			b.addAuthor(name)
		}
	} else if row.AuthorName != nil {
		b.addAuthor(*row.AuthorName)
	}

	if len(row.Topics) > 0 {
		for _, t := range row.Topics {
			b.addTopic(t)
		}
	} else if row.TopicID != nil && row.TopicName != nil {
		b.addTopic(TopicRef{ID: *row.TopicID, Name: *row.TopicName})
	}
}

func (b *builder) trackDate(d *time.Time) {
	if d == nil {
		return
	}
	if b.oldest == nil || d.Before(*b.oldest) {
		b.oldest = d
	}
	if b.newest == nil || d.After(*b.newest) {
		b.newest = d
	}
}

func (b *builder) build() Entry {
	if b.childByID == nil {
		return b.entry
	}
	out := b.entry
	out.ChildDocuments = make([]Entry, 0, len(b.children))
	for _, child := range b.children {
		out.ChildDocuments = append(out.ChildDocuments, child.build())
	}
	return out
}

func documentEntry(row Row) Entry {
	return Entry{
		ID:              row.ID,
		Title:           row.Title,
		Abstract:        row.Abstract,
		PublicationDate: row.PublicationDate,
		Category:        row.Category,
		Volume:          row.Volume,
		IssueNumber:     row.IssueNumber,
		FilePath:        row.FilePath,
		IsPublic:        row.IsPublic,
	}
}

// parentID is the group a row folds into, nil for standalone rows. Members of
// an archived group are listed on their own.
func (r Row) parentID() *uint64 {
	if r.CompiledDocumentID == nil || r.CompiledArchived {
		return nil
	}
	return r.CompiledDocumentID
}

// compiledEntry starts a synthetic group card from the first member row seen.
func compiledEntry(id uint64, row Row) Entry {
	entry := Entry{ID: id, IsCompiled: true, IsPublic: true}

	if row.CompiledCategory != nil {
		entry.Category = domain.Category(*row.CompiledCategory)
		if row.CompiledVolume != nil {
			entry.Volume = *row.CompiledVolume
		}
		entry.StartYear = row.CompiledStartYear
		entry.EndYear = row.CompiledEndYear
		entry.Title = domain.CompiledTitle(entry.Category, entry.Volume, entry.StartYear, entry.EndYear)
		return entry
	}

	// group row missing: guess from the member
	entry.Category = row.Category
	entry.Volume = row.Volume
	entry.Title = domain.CompiledTitle(row.Category, row.Volume, nil, nil)
	if entry.Title == "" {
		entry.Title = fmt.Sprintf("Compiled Document #%d", id)
	}
	return entry
}

// Aggregate turns flat listing rows into a page of cards. Rows of the same
// document must share its scalar columns; they need not be adjacent.
func Aggregate(rows []Row, opts AggregateOptions) Page {
	var (
		order      []*builder
		standalone = map[uint64]*builder{}
		groups     = map[uint64]*builder{}
	)

	for _, row := range rows {
		parent := row.parentID()
		if parent == nil {
			b, ok := standalone[row.ID]
			if !ok {
				b = newBuilder(documentEntry(row))
				standalone[row.ID] = b
				order = append(order, b)
			}
			b.absorb(row)
			b.trackDate(row.PublicationDate)
			continue
		}

		group, ok := groups[*parent]
		if !ok {
			group = newBuilder(compiledEntry(*parent, row))
			group.childByID = map[uint64]*builder{}
			groups[*parent] = group
			order = append(order, group)
		}

		child, ok := group.childByID[row.ID]
		if !ok {
			child = newBuilder(documentEntry(row))
			group.childByID[row.ID] = child
			group.children = append(group.children, child)
			if !row.IsPublic {
				group.entry.IsPublic = false
			}
		}
		child.absorb(row)
		group.trackDate(row.PublicationDate)

		// the card lists the union of its members' authors
		for _, name := range child.entry.Authors {
			group.addAuthor(name)
		}
	}

	sortBuilders(order, opts.Sort)

	for _, b := range order {
		if b.childByID != nil {
			switch opts.Sort {
			case SortEarliest:
				b.entry.PublicationDate = b.oldest
			default:
				b.entry.PublicationDate = b.newest
			}
		}
	}

	return paginate(order, opts)
}

// sortDate is the date an entry sorts by: its own for documents, the newest
// member date for groups under "latest" and the oldest under "earliest".
func sortDate(b *builder, sortOrder SortOrder) *time.Time {
	if b.childByID == nil {
		return b.entry.PublicationDate
	}
	if sortOrder == SortEarliest {
		return b.oldest
	}
	return b.newest
}

func sortBuilders(order []*builder, sortOrder SortOrder) {
	switch sortOrder {
	case SortTitle:
		sort.SliceStable(order, func(i, j int) bool {
			return strings.ToLower(order[i].entry.Title) < strings.ToLower(order[j].entry.Title)
		})
	case SortEarliest, SortLatest, "":
		sort.SliceStable(order, func(i, j int) bool {
			di, dj := sortDate(order[i], sortOrder), sortDate(order[j], sortOrder)
			// undated entries go last
			switch {
			case di == nil && dj == nil:
				return false
			case di == nil:
				return false
			case dj == nil:
				return true
			}
			if sortOrder == SortEarliest {
				return di.Before(*dj)
			}
			return di.After(*dj)
		})
	}
}

func paginate(order []*builder, opts AggregateOptions) Page {
	page, size := opts.Page, opts.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = len(order)
	}

	total := len(order)
	out := Page{
		Documents:   []Entry{},
		TotalCount:  total,
		TotalPages:  db.TotalPages(total, size),
		CurrentPage: page,
	}

	start := (page - 1) * size
	if start >= total {
		return out
	}
	end := min(start+size, total)
	for _, b := range order[start:end] {
		out.Documents = append(out.Documents, b.build())
	}
	return out
}
