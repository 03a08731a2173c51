package server

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/membercircle/compliments/internal/app"
	"github.com/membercircle/compliments/internal/config"
	svcErr "github.com/membercircle/compliments/internal/errors"
	"github.com/membercircle/compliments/internal/repository"
	"github.com/membercircle/compliments/internal/service/activity"
	"github.com/membercircle/compliments/internal/service/compliments"
	"github.com/membercircle/compliments/internal/service/notify"
	"github.com/membercircle/compliments/internal/utils/pagination"
)

// Server is the HTTP surface: the server-rendered profile tab plus the
// create/delete/purge mutations and small JSON feeds.
type Server struct {
	appCtx      *app.AppContext
	cfg         *config.Config
	compliments *compliments.Service
	dispatcher  *notify.Dispatcher
	recorder    *activity.Recorder
	lookup      *repository.LookupRepository
}

func New(
	appCtx *app.AppContext,
	cfg *config.Config,
	complimentSvc *compliments.Service,
	dispatcher *notify.Dispatcher,
	recorder *activity.Recorder,
) *Server {
	return &Server{
		appCtx:      appCtx,
		cfg:         cfg,
		compliments: complimentSvc,
		dispatcher:  dispatcher,
		recorder:    recorder,
		lookup:      repository.NewLookupRepository(appCtx.DB),
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.SetHTMLTemplate(template.Must(template.New("compliments.tmpl").Parse(complimentsTemplate)))

	members := r.Group("/members/:userID")
	{
		members.GET("/compliments", s.handleComplimentsTab)
		members.POST("/compliments", s.handleSend)
		members.DELETE("/compliments", s.handlePurge)
		members.GET("/activity", s.handleActivityFeed)
		members.GET("/notifications", s.handleNotifications)
	}
	r.POST("/compliments/:id/delete", s.handleDelete)

	return r
}

// complimentRow is one rendered listing entry.
type complimentRow struct {
	TermName   string
	TermIcon   string
	SenderName string
	SenderURL  string
	Message    string
	Date       string
}

// handleComplimentsTab renders the paginated profile tab. A logged-in
// owner arriving with bpc_read=true&bpc_sender_id=N first gets the
// notification acknowledged, then a redirect to the canonical URL with
// no query parameters.
func (s *Server) handleComplimentsTab(c *gin.Context) {
	displayedID, ok := s.pathUserID(c)
	if !ok {
		return
	}
	viewerID := s.currentUserID(c)

	if c.Query("bpc_read") == "true" && c.Query("bpc_sender_id") != "" {
		senderID, err := strconv.ParseUint(c.Query("bpc_sender_id"), 10, 64)
		if err == nil && viewerID != 0 && viewerID == displayedID {
			if err := s.dispatcher.MarkRead(c.Request.Context(), viewerID, senderID); err != nil {
				s.appCtx.Logger.Error("mark read failed", "viewer", viewerID, "sender", senderID, "err", err)
			}
		}
		c.Redirect(http.StatusFound, fmt.Sprintf("/members/%d/compliments", displayedID))
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("cpage", "1"))
	complimentID, _ := strconv.ParseUint(c.Query("c_id"), 10, 64)

	result, err := s.compliments.ListPage(c.Request.Context(), displayedID, page, complimentID)
	if err != nil {
		s.appCtx.Logger.Error("listing failed", "user", displayedID, "err", err)
		c.String(svcErr.HTTPStatus(err), "could not load compliments")
		return
	}

	rows, err := s.renderRows(c, result)
	if err != nil {
		c.String(svcErr.HTTPStatus(err), "could not load compliments")
		return
	}

	displayedName := fmt.Sprintf("member %d", displayedID)
	if u, err := s.lookup.UserByID(c.Request.Context(), displayedID); err == nil {
		displayedName = u.DisplayName
	}

	emptyMessage := "Sorry, no compliments just yet."
	if viewerID == displayedID {
		emptyMessage = "Aw, you have no compliments yet. To get some try sending compliments to others."
	}

	c.HTML(http.StatusOK, "compliments.tmpl", gin.H{
		"DisplayedName":  displayedName,
		"Rows":           rows,
		"Summary":        result.Window.Summary(result.Total),
		"Pages":          pagination.PageNumbers(result.Total, result.Window.PageSize),
		"CurrentPage":    result.Window.Page,
		"ShowPagination": result.Total > int64(result.Window.PageSize),
		"EmptyMessage":   emptyMessage,
	})
}

func (s *Server) renderRows(c *gin.Context, result *compliments.Page) ([]complimentRow, error) {
	termIDs := make([]uint64, 0, len(result.Compliments))
	senderIDs := make([]uint64, 0, len(result.Compliments))
	for _, comp := range result.Compliments {
		termIDs = append(termIDs, comp.TermID)
		senderIDs = append(senderIDs, comp.SenderID)
	}

	terms, err := s.lookup.TermsByIDs(c.Request.Context(), termIDs)
	if err != nil {
		return nil, err
	}
	senders, err := s.lookup.UsersByIDs(c.Request.Context(), senderIDs)
	if err != nil {
		return nil, err
	}

	rows := make([]complimentRow, 0, len(result.Compliments))
	for _, comp := range result.Compliments {
		row := complimentRow{
			Message: comp.Message,
			Date:    comp.CreatedAt.Format("January 2, 2006"),
		}
		if term, found := terms[comp.TermID]; found {
			row.TermName = term.Name
			row.TermIcon = term.IconURL
		}
		if sender, found := senders[comp.SenderID]; found {
			row.SenderName = sender.DisplayName
		} else {
			row.SenderName = fmt.Sprintf("member %d", comp.SenderID)
		}
		row.SenderURL = fmt.Sprintf("/members/%d/compliments", comp.SenderID)
		rows = append(rows, row)
	}
	return rows, nil
}

// handleSend creates a compliment from the authenticated sender to the
// displayed user. A validation rejection redirects with nothing created
// and no error message — the silent no-op contract.
func (s *Server) handleSend(c *gin.Context) {
	receiverID, ok := s.pathUserID(c)
	if !ok {
		return
	}
	senderID := s.currentUserID(c)

	termID, _ := strconv.ParseUint(c.PostForm("term_id"), 10, 64)

	var postID *uint64
	if raw := c.PostForm("post_id"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil && parsed > 0 {
			postID = &parsed
		}
	}

	_, err := s.compliments.Send(c.Request.Context(), senderID, receiverID, termID, postID, c.PostForm("message"))
	if err != nil && svcErr.HTTPStatus(err) >= http.StatusInternalServerError {
		c.String(svcErr.HTTPStatus(err), "could not send compliment")
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/members/%d/compliments", receiverID))
}

// handleDelete removes a single compliment on behalf of its sender or
// receiver.
func (s *Server) handleDelete(c *gin.Context) {
	complimentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.String(http.StatusBadRequest, "invalid compliment id")
		return
	}
	requesterID := s.currentUserID(c)

	if err := s.compliments.Remove(c.Request.Context(), complimentID, requesterID); err != nil {
		c.String(svcErr.HTTPStatus(err), "could not delete compliment")
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/members/%d/compliments", requesterID))
}

// handlePurge is the account-deletion hook: it drops every compliment
// the user sent or received, plus their activity and notifications.
func (s *Server) handlePurge(c *gin.Context) {
	userID, ok := s.pathUserID(c)
	if !ok {
		return
	}
	if s.currentUserID(c) != userID {
		c.String(http.StatusForbidden, "forbidden")
		return
	}

	if err := s.compliments.PurgeUser(c.Request.Context(), userID); err != nil {
		c.String(svcErr.HTTPStatus(err), "could not purge compliments")
		return
	}
	c.Status(http.StatusNoContent)
}

// handleActivityFeed returns the user's own compliment feed entries.
func (s *Server) handleActivityFeed(c *gin.Context) {
	userID, ok := s.pathUserID(c)
	if !ok {
		return
	}

	entries, err := s.recorder.Feed(c.Request.Context(), userID, 20)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": "could not load activity"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": entries})
}

// handleNotifications returns the viewer's persisted notifications.
func (s *Server) handleNotifications(c *gin.Context) {
	userID, ok := s.pathUserID(c)
	if !ok {
		return
	}
	if s.currentUserID(c) != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	notifications, err := s.dispatcher.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(svcErr.HTTPStatus(err), gin.H{"error": "could not load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// pathUserID parses the :userID segment, writing the error response itself.
func (s *Server) pathUserID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("userID"), 10, 64)
	if err != nil || id == 0 {
		c.String(http.StatusBadRequest, "invalid user id")
		return 0, false
	}
	return id, true
}

// currentUserID is the session stand-in: the host framework authenticates
// upstream and forwards the member id in a header. Zero means anonymous.
func (s *Server) currentUserID(c *gin.Context) uint64 {
	id, _ := strconv.ParseUint(c.GetHeader("X-User-ID"), 10, 64)
	return id
}
