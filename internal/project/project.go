// Package project rediscovers resources grouped under a project label.
// A project is nothing but a label value: creation paths stamp it on
// containers, networks and volumes, and resume queries the engine for
// everything carrying it. No project state is stored anywhere else.
package project

import (
	"context"

	"golang.org/x/sync/errgroup"

	"stevedore/internal/engine"
)

// Label is the key every project-scoped resource carries. Resume filters
// on exactly this key with the project name as value.
const Label = "stevedore.project"

// ContainerRef is one container of a project summary.
type ContainerRef struct {
	ID    string
	Name  string
	State string
}

// Ref is one network or volume of a project summary. Volumes are
// addressed by name, so both fields carry it.
type Ref struct {
	ID   string
	Name string
}

// Summary is the transient view of one project's resources in engine
// listing order. It is never cached: resume exists to recover after the
// session that created the resources is gone, so staleness would defeat
// it.
type Summary struct {
	Name       string
	Containers []ContainerRef
	Networks   []Ref
	Volumes    []Ref
}

// Empty reports whether no resource carries the project label.
func (s Summary) Empty() bool {
	return len(s.Containers) == 0 && len(s.Networks) == 0 && len(s.Volumes) == 0
}

// Resume reassembles the current state of a project from three
// independent label-filtered queries, issued concurrently. A project
// with no resources yields a valid empty summary, not an error.
// Resources relabeled or removed behind our back are not reconciled;
// the summary reflects engine truth at query time only.
func Resume(ctx context.Context, client *engine.Client, name string) (Summary, error) {
	filter := map[string]string{Label: name}
	summary := Summary{Name: name}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		containers, err := client.ListContainers(ctx, engine.ContainerListOptions{All: true, Labels: filter})
		if err != nil {
			return err
		}
		for _, c := range containers {
			summary.Containers = append(summary.Containers, ContainerRef{ID: c.ID, Name: c.Name, State: c.State})
		}
		return nil
	})
	g.Go(func() error {
		networks, err := client.ListNetworks(ctx, filter)
		if err != nil {
			return err
		}
		for _, n := range networks {
			summary.Networks = append(summary.Networks, Ref{ID: n.ID, Name: n.Name})
		}
		return nil
	})
	g.Go(func() error {
		volumes, err := client.ListVolumes(ctx, filter)
		if err != nil {
			return err
		}
		for _, v := range volumes {
			summary.Volumes = append(summary.Volumes, Ref{ID: v.Name, Name: v.Name})
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return summary, nil
}
