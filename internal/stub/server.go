package stub

import (
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldscope/siteline/internal/api"
)

// Server is an in-memory stand-in for the site-management backend. It
// implements the two endpoints the client consumes, with the same
// message-driven success protocol, and pages the feed backward: page 1
// holds the newest comments, higher pages reach further into history.
// Pages are gap-free and non-overlapping.
type Server struct {
	app    *fiber.App
	token  string
	author api.Author

	mu     sync.Mutex
	site   api.Site
	visits []*visitState
	nextID int
}

type visitState struct {
	visit    api.Visit
	comments []api.Comment // ascending creation time
}

// New creates a stub server accepting the given token.
func New(token string) *Server {
	s := &Server{
		app:    fiber.New(fiber.Config{DisableStartupMessage: true}),
		token:  token,
		author: api.Author{ID: "u1", DisplayName: "Field User"},
		site:   api.Site{ID: "1", Name: "Demo Site", Address: "12 Harbor Rd"},
		nextID: 1,
	}
	s.app.Post("/api/site_details", s.handleSiteDetails)
	s.app.Post("/api/add_comment", s.handleAddComment)
	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until the process exits.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// AddVisit appends a visit and returns its id.
func (s *Server) AddVisit(status, assignee string, createdAt time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newIDLocked()
	s.visits = append(s.visits, &visitState{
		visit: api.Visit{ID: id, Status: status, AssignedTo: assignee, CreatedAt: createdAt},
	})
	return id
}

// AddComment appends a comment to a visit, keeping ascending order.
func (s *Server) AddComment(visitID, content string, createdAt time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.findVisitLocked(visitID)
	if v == nil {
		return ""
	}
	id := s.newIDLocked()
	v.comments = append(v.comments, api.Comment{
		ID:        id,
		Author:    s.author,
		Content:   content,
		CreatedAt: createdAt,
		VisitID:   visitID,
	})
	return id
}

// SeedDemo fills the feed with a few days of history across two visits.
func (s *Server) SeedDemo() {
	start := time.Now().Add(-72 * time.Hour)
	v1 := s.AddVisit("closed", "Ana Reyes", start)
	for i := 0; i < 12; i++ {
		s.AddComment(v1, fmt.Sprintf("inspection note %d", i+1), start.Add(time.Duration(i)*time.Hour))
	}
	v2 := s.AddVisit("open", "Luis Prado", start.Add(48*time.Hour))
	for i := 0; i < 6; i++ {
		s.AddComment(v2, fmt.Sprintf("follow-up %d", i+1), start.Add(48*time.Hour).Add(time.Duration(i)*time.Hour))
	}
}

func (s *Server) handleSiteDetails(c *fiber.Ctx) error {
	var req api.SitePageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Malformed request"})
	}
	if req.Token != s.token {
		return c.JSON(fiber.Map{"message": "Invalid token"})
	}
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 10
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Window the global chronological comment list from the end backward.
	var all []api.Comment
	for _, v := range s.visits {
		all = append(all, v.comments...)
	}
	total := len(all)
	end := total - (req.Page-1)*req.PageSize
	start := end - req.PageSize
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}
	window := all[start:end]

	inWindow := make(map[string]bool, len(window))
	for _, cm := range window {
		inWindow[cm.ID] = true
	}

	var sv []api.SiteVisit
	for _, v := range s.visits {
		var slice []api.Comment
		for _, cm := range v.comments {
			if inWindow[cm.ID] {
				slice = append(slice, cm)
			}
		}
		if len(slice) == 0 {
			continue
		}
		sv = append(sv, api.SiteVisit{
			Visit:         v.visit,
			Comments:      slice,
			TotalComments: len(v.comments),
			CommentsShown: len(slice),
		})
	}

	totalPages := (total + req.PageSize - 1) / req.PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	return c.JSON(api.SitePageResponse{
		Message:    api.MsgSiteFetched,
		Site:       s.site,
		SiteVisits: sv,
		Pagination: api.Pagination{
			CurrentPage: req.Page,
			TotalPages:  totalPages,
			HasNext:     start > 0,
		},
	})
}

func (s *Server) handleAddComment(c *fiber.Ctx) error {
	if c.FormValue("token") != s.token {
		return c.JSON(fiber.Map{"message": "Invalid token"})
	}
	content := c.FormValue("content")
	visitID := c.FormValue("visit_id")

	var docs []api.Document
	if form, err := c.MultipartForm(); err == nil && form != nil {
		for _, fh := range form.File["documents"] {
			docs = append(docs, api.Document{
				Name:     fh.Filename,
				URL:      "/files/" + fh.Filename,
				MIMEType: fh.Header.Get("Content-Type"),
				Size:     fh.Size,
			})
		}
	}
	if content == "" && len(docs) == 0 {
		return c.JSON(fiber.Map{"message": "Comment is empty"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.findVisitLocked(visitID)
	if v == nil {
		if visitID != "" {
			return c.JSON(fiber.Map{"message": "Visit not found"})
		}
		// First comment on a site without visits: create one.
		id := s.newIDLocked()
		v = &visitState{
			visit: api.Visit{ID: id, Status: "open", AssignedTo: s.author.DisplayName, CreatedAt: time.Now()},
		}
		s.visits = append(s.visits, v)
	}

	comment := api.Comment{
		ID:        s.newIDLocked(),
		Author:    s.author,
		Content:   content,
		Documents: docs,
		CreatedAt: time.Now(),
		VisitID:   v.visit.ID,
	}
	v.comments = append(v.comments, comment)

	return c.JSON(api.AddCommentResponse{
		Message: api.MsgCommentAdded,
		Comment: comment,
	})
}

func (s *Server) findVisitLocked(id string) *visitState {
	for _, v := range s.visits {
		if v.visit.ID == id {
			return v
		}
	}
	return nil
}

func (s *Server) newIDLocked() string {
	id := fmt.Sprintf("%d", s.nextID)
	s.nextID++
	return id
}
