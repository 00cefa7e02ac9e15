// ABOUTME: Graphviz rendering of the records a seed run created
// ABOUTME: Builds nodes from stored item events and links each record to its parent
package viz

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"
	"github.com/harperreed/salesseed/db"
	"github.com/harperreed/salesseed/events"
)

type GraphGenerator struct {
	db *sql.DB
}

func NewGraphGenerator(database *sql.DB) *GraphGenerator {
	return &GraphGenerator{db: database}
}

type nodeStyle struct {
	shape cgraph.Shape
	color string
}

var entityStyles = map[string]nodeStyle{
	"client":      {cgraph.BoxShape, "lightblue"},
	"contact":     {cgraph.EllipseShape, "lightgreen"},
	"opportunity": {cgraph.DiamondShape, "lightyellow"},
	"proposal":    {cgraph.NoteShape, "lightsalmon"},
	"activity":    {cgraph.EllipseShape, "lavender"},
	"staff":       {cgraph.HouseShape, "lightgrey"},
}

// GenerateRunGraph renders every record created by runID as XDOT.
func (g *GraphGenerator) GenerateRunGraph(runID string) (string, error) {
	items, err := db.ListEvents(g.db, runID, events.KindItem)
	if err != nil {
		return "", fmt.Errorf("failed to fetch run events: %w", err)
	}
	return RenderRunGraph("Seed run "+runID, items)
}

// RenderRunGraph renders created item events. Parents that were not created
// in the same run still get a dashed placeholder node.
func RenderRunGraph(title string, items []events.Event) (string, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetLabel(title)
	graph.SetRankDir(cgraph.LRRank)

	nodes := make(map[string]*cgraph.Node)
	for _, e := range items {
		if e.Outcome != events.OutcomeCreated || e.Entity == "" || e.Entity == "admin" {
			continue
		}
		node, err := graph.CreateNodeByName(nodeName(e.Entity, e.Item))
		if err != nil {
			return "", fmt.Errorf("failed to create %s node: %w", e.Entity, err)
		}
		node.SetLabel(fmt.Sprintf("%s\n(%s)", e.Item, e.Entity))
		node.SetStyle("filled")
		if style, ok := entityStyles[e.Entity]; ok {
			node.SetShape(style.shape)
			node.SetFillColor(style.color)
		}
		nodes[e.Entity+":"+e.Item] = node
	}

	for _, e := range items {
		child, ok := nodes[e.Entity+":"+e.Item]
		if !ok || e.Parent == "" {
			continue
		}
		parent, ok := nodes[e.Parent]
		if !ok {
			entity, key, _ := strings.Cut(e.Parent, ":")
			parent, err = graph.CreateNodeByName(nodeName(entity, key))
			if err != nil {
				return "", fmt.Errorf("failed to create placeholder node: %w", err)
			}
			parent.SetLabel(fmt.Sprintf("%s\n(%s, existing)", key, entity))
			parent.SetStyle("dashed")
			nodes[e.Parent] = parent
		}
		edge, err := graph.CreateEdgeByName(e.Entity, parent, child)
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		edge.SetLabel(e.Entity)
		if e.Entity == "activity" {
			edge.SetStyle("dotted")
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}

	return buf.String(), nil
}

func nodeName(entity, key string) string {
	return entity + "_" + strings.ReplaceAll(key, "-", "_")
}
