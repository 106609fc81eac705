package api

import "github.com/fieldscope/siteline/internal/feed"

// ToFeedGroups converts a fetched page into feed groups plus the feed-level
// cursor. Comment order within a visit is preserved as the server sent it
// (ascending creation time).
func ToFeedGroups(page *SitePageResponse) ([]*feed.Group, feed.Cursor) {
	groups := make([]*feed.Group, 0, len(page.SiteVisits))
	for _, sv := range page.SiteVisits {
		g := &feed.Group{
			ID:        sv.Visit.ID,
			Status:    sv.Visit.Status,
			Assignee:  sv.Visit.AssignedTo,
			CreatedAt: sv.Visit.CreatedAt,
			Comments:  make([]feed.Comment, 0, len(sv.Comments)),
			Shown:     sv.CommentsShown,
			Total:     sv.TotalComments,
		}
		for _, c := range sv.Comments {
			g.Comments = append(g.Comments, ToFeedComment(c))
		}
		groups = append(groups, g)
	}
	cursor := feed.Cursor{
		CurrentPage: page.Pagination.CurrentPage,
		TotalPages:  page.Pagination.TotalPages,
		HasNext:     page.Pagination.HasNext,
	}
	return groups, cursor
}

// ToFeedComment converts a wire comment into the feed model.
func ToFeedComment(c Comment) feed.Comment {
	out := feed.Comment{
		ID:         c.ID,
		AuthorID:   c.Author.ID,
		AuthorName: c.Author.DisplayName,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
		GroupID:    c.VisitID,
	}
	for _, d := range c.Documents {
		out.Attachments = append(out.Attachments, feed.Attachment{
			Name:     d.Name,
			MIMEType: d.MIMEType,
			Size:     d.Size,
			URL:      d.URL,
		})
	}
	return out
}
