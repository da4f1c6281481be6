package rest

import (
	"bytes"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/relampo/relampo-yml-editor-sub000/internal/document"
	"github.com/relampo/relampo-yml-editor-sub000/internal/editor"
	"github.com/relampo/relampo-yml-editor-sub000/internal/lint"
	"github.com/relampo/relampo-yml-editor-sub000/internal/placement"
	"github.com/relampo/relampo-yml-editor-sub000/pkg/types"
)

func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Sessions:  s.sessions.Len(),
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (s *Server) addableTypes(c *fiber.Ctx) error {
	t := types.NodeType(c.Params("type"))
	if !t.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "unknown node type: "+string(t))
	}
	return c.JSON(AddableResponse{
		Type:      t,
		Addable:   placement.AddableTypes(t),
		Removable: placement.Removable(t),
		Draggable: placement.Draggable(t),
	})
}

func (s *Server) listDocuments(c *fiber.Ctx) error {
	return c.JSON(DocumentListResponse{IDs: s.sessions.IDs()})
}

// createDocument opens a session on the raw request body. Text that does not
// parse still opens a session; the error is reported in the state.
func (s *Server) createDocument(c *fiber.Ctx) error {
	sess, _ := s.sessions.Create(string(c.Body()))
	var resp DocumentResponse
	_ = sess.Do(func(sh *editor.Shell) error {
		resp = DocumentResponse{ID: sess.ID, State: sh.Snapshot()}
		return nil
	})
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (s *Server) session(c *fiber.Ctx) (*Session, error) {
	id := c.Params("id")
	sess, ok := s.sessions.Get(id)
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, "document not found: "+id)
	}
	return sess, nil
}

func (s *Server) getDocument(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	var resp DocumentResponse
	_ = sess.Do(func(sh *editor.Shell) error {
		resp = DocumentResponse{ID: sess.ID, State: sh.Snapshot()}
		return nil
	})
	return c.JSON(resp)
}

func (s *Server) closeDocument(c *fiber.Ctx) error {
	if !s.sessions.Delete(c.Params("id")) {
		return fiber.NewError(fiber.StatusNotFound, "document not found: "+c.Params("id"))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// editText replaces the document text. A parse error is not a request
// failure: the text is kept and the state carries the message.
func (s *Server) editText(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	var resp DocumentResponse
	_ = sess.Do(func(sh *editor.Shell) error {
		_ = sh.EditText(string(c.Body()))
		resp = DocumentResponse{ID: sess.ID, State: sh.Snapshot()}
		return nil
	})
	return c.JSON(resp)
}

func (s *Server) download(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := sess.Do(func(sh *editor.Shell) error {
		return sh.Download(&buf)
	}); err != nil {
		return err
	}
	c.Attachment("test.yaml")
	c.Set(fiber.HeaderContentType, "application/yaml")
	return c.Send(buf.Bytes())
}

func (s *Server) lintDocument(c *fiber.Ctx) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	var root *types.Node
	_ = sess.Do(func(sh *editor.Shell) error {
		root = sh.Tree()
		return nil
	})
	if root == nil {
		return editor.ErrNoTree
	}
	diags := lint.Check(root)
	if diags == nil {
		diags = []lint.Diagnostic{}
	}
	return c.JSON(LintResponse{
		Diagnostics: diags,
		Errors:      lint.Count(diags, lint.SeverityError),
		Warnings:    lint.Count(diags, lint.SeverityWarning),
	})
}

// mutate runs a tree edit and answers with whether it changed anything.
func (s *Server) mutate(c *fiber.Ctx, fn func(sh *editor.Shell) (bool, error)) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	var resp MutationResponse
	if err := sess.Do(func(sh *editor.Shell) error {
		changed, err := fn(sh)
		if err != nil {
			return err
		}
		resp = MutationResponse{Changed: changed, State: sh.Snapshot()}
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(resp)
}

func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

func position(p types.Position) error {
	if !p.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "invalid position: "+string(p))
	}
	return nil
}

func (s *Server) toggleNode(c *fiber.Ctx) error {
	id := c.Params("nodeId")
	return s.mutate(c, func(sh *editor.Shell) (bool, error) {
		return sh.ToggleExpanded(id)
	})
}

func (s *Server) setEnabled(c *fiber.Ctx) error {
	var req EnabledRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Enabled == nil {
		return fiber.NewError(fiber.StatusBadRequest, "enabled is required")
	}
	id := c.Params("nodeId")
	return s.mutate(c, func(sh *editor.Shell) (bool, error) {
		return sh.SetEnabled(id, *req.Enabled)
	})
}

// updateData replaces node data with the JSON object in the body. Key order
// is kept so the rewritten YAML follows it.
func (s *Server) updateData(c *fiber.Ctx) error {
	v, err := document.FromJSON(c.Body())
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	data, ok := v.(*document.Map)
	if !ok {
		return fiber.NewError(fiber.StatusBadRequest, "node data must be a JSON object")
	}
	id := c.Params("nodeId")
	return s.mutate(c, func(sh *editor.Shell) (bool, error) {
		return sh.UpdateNodeData(id, data)
	})
}

func (s *Server) renameNode(c *fiber.Ctx) error {
	var req RenameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	id := c.Params("nodeId")
	return s.mutate(c, func(sh *editor.Shell) (bool, error) {
		return sh.Rename(id, req.Name)
	})
}

func (s *Server) removeNode(c *fiber.Ctx) error {
	id := c.Params("nodeId")
	return s.mutate(c, func(sh *editor.Shell) (bool, error) {
		return sh.Remove(id)
	})
}

func (s *Server) addChild(c *fiber.Ctx) error {
	var req AddChildRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if !req.Type.Valid() {
		return fiber.NewError(fiber.StatusBadRequest, "unknown node type: "+string(req.Type))
	}
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	parentID := c.Params("nodeId")
	var resp AddChildResponse
	if err := sess.Do(func(sh *editor.Shell) error {
		child, err := sh.AddChild(parentID, req.Type)
		if err != nil {
			return err
		}
		resp = AddChildResponse{Node: child, State: sh.Snapshot()}
		return nil
	}); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

func (s *Server) moveNode(c *fiber.Ctx) error {
	var req MoveRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := position(req.Position); err != nil {
		return err
	}
	return s.mutate(c, func(sh *editor.Shell) (bool, error) {
		return sh.Move(req.NodeID, req.TargetID, req.Position)
	})
}

func (s *Server) selectNode(c *fiber.Ctx) error {
	var req SelectionRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return s.mutate(c, func(sh *editor.Shell) (bool, error) {
		prev := sh.Selected()
		if err := sh.Select(req.NodeID); err != nil {
			return false, err
		}
		return prev != sh.Selected(), nil
	})
}

func (s *Server) dragStart(c *fiber.Ctx) error {
	var req DragStartRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return s.mutate(c, func(sh *editor.Shell) (bool, error) {
		return true, sh.StartDrag(req.NodeID)
	})
}

func (s *Server) dragOver(c *fiber.Ctx) error {
	var req DropZoneRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := position(req.Position); err != nil {
		return err
	}
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	var resp DragOverResponse
	if err := sess.Do(func(sh *editor.Shell) error {
		if !sh.Drag().Active() {
			return editor.ErrNotDragging
		}
		resp = DragOverResponse{
			Allowed: sh.DragOver(req.TargetID, req.Position),
			Drag:    sh.Drag(),
		}
		return nil
	}); err != nil {
		return err
	}
	return c.JSON(resp)
}

func (s *Server) dragEnd(c *fiber.Ctx) error {
	return s.mutate(c, func(sh *editor.Shell) (bool, error) {
		active := sh.Drag().Active()
		sh.EndDrag()
		return active, nil
	})
}

func (s *Server) drop(c *fiber.Ctx) error {
	var req DropZoneRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := position(req.Position); err != nil {
		return err
	}
	return s.mutate(c, func(sh *editor.Shell) (bool, error) {
		return sh.Drop(req.TargetID, req.Position)
	})
}
