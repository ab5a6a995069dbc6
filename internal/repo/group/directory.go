package group

import "context"

// Directory adapts GroupRepo to the plain-error interfaces the broadcast
// layer consumes.
type Directory struct {
	repo GroupRepo
}

func NewDirectory(repo GroupRepo) *Directory {
	return &Directory{repo: repo}
}

func (d *Directory) GroupsOf(ctx context.Context, userID string) ([]string, error) {
	groups, appErr := d.repo.GroupsOf(ctx, userID)
	if appErr != nil {
		return nil, appErr
	}
	return groups, nil
}

func (d *Directory) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	ok, appErr := d.repo.IsMember(ctx, groupID, userID)
	if appErr != nil {
		return false, appErr
	}
	return ok, nil
}

func (d *Directory) HasChannel(ctx context.Context, groupID, channel string) (bool, error) {
	ok, appErr := d.repo.HasChannel(ctx, groupID, channel)
	if appErr != nil {
		return false, appErr
	}
	return ok, nil
}
