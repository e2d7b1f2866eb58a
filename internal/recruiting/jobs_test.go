package recruiting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/cv-matcher/internal/scoring"
	"github.com/spigell/cv-matcher/internal/store"
)

func TestCreateJob(t *testing.T) {
	f := newFixture(t, scoring.Lenient)
	ctx := context.Background()

	res, err := f.svc.CreateJob(ctx, JobInput{Name: " Go Engineer ", Description: "Build services"})
	require.NoError(t, err)
	assert.Equal(t, "Go Engineer", res.Job.JobName)
	assert.Equal(t, []string{"Go"}, res.Job.TechnicalSkill)
	assert.Nil(t, res.Notifications)
	assert.Empty(t, f.sender.sent)

	_, err = f.svc.CreateJob(ctx, JobInput{Name: "Go Engineer", Description: "again"})
	var dup *DuplicateJobError
	assert.ErrorAs(t, err, &dup)

	_, err = f.svc.CreateJob(ctx, JobInput{Name: "QA"})
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)

	jobs, err := f.svc.ListJobs(ctx)
	require.NoError(t, err)
	assert.Len(t, jobs, 1)
}

func TestCreateJobBroadcast(t *testing.T) {
	f := newFixture(t, scoring.Lenient)
	f.addCandidate(t, "Ready", "111", true)
	f.addCandidate(t, "Pending", "222", false)
	f.addCandidate(t, "Silent", "", false)
	f.sender.failTo["333"] = true
	f.addCandidate(t, "Broken", "333", true)

	res, err := f.svc.CreateJob(context.Background(), JobInput{
		Name:        "Go Engineer",
		Description: "<p>Build <b>Go</b> services</p>",
		Notify:      true,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Notifications)
	assert.Equal(t, 3, res.Notifications.Total)
	assert.Equal(t, 2, res.Notifications.Sent)
	assert.Equal(t, 1, res.Notifications.Failed)

	require.Len(t, f.sender.sent, 2)
	assert.Contains(t, f.sender.sent[0].body, "*Description:* Build Go services")
	assert.NotContains(t, f.sender.sent[0].body, "*Note:*")
	assert.Equal(t, "222", f.sender.sent[1].to)
	assert.Contains(t, f.sender.sent[1].body, "*Note:*")
}

func TestDeleteJobRemovesMatchings(t *testing.T) {
	f := newFixture(t, scoring.Lenient)
	ctx := context.Background()

	c := f.addCandidate(t, "Asha", "111", true)
	j := f.addJob(t, "Go Engineer")
	f.addMatching(t, c, j, 80)

	require.NoError(t, f.svc.DeleteJob(ctx, j.ID.Hex()))

	_, err := f.svc.GetJob(ctx, j.ID.Hex())
	assert.ErrorIs(t, err, store.ErrNotFound)

	all, err := f.svc.AllMatchings(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)

	assert.ErrorIs(t, f.svc.DeleteJob(ctx, "nope"), store.ErrInvalidID)
}
