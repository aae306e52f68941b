package portfolio

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, officeID uuid.UUID) *Client {
	t.Helper()
	c, err := NewClient(uuid.New(), officeID, "CL-202401-00001", ClientInput{Firstname: "Amina", Lastname: "Otieno"}, date(2024, 1, 1))
	require.NoError(t, err)
	return c
}

func TestClientLifecycle(t *testing.T) {
	office := uuid.New()

	t.Run("name rules", func(t *testing.T) {
		_, err := NewClient(uuid.New(), office, "", ClientInput{}, date(2024, 1, 1))
		assert.Error(t, err)
		_, err = NewClient(uuid.New(), office, "", ClientInput{Firstname: "A", Lastname: "B", Fullname: "AB Ltd"}, date(2024, 1, 1))
		assert.Error(t, err)
		c, err := NewClient(uuid.New(), office, "", ClientInput{Fullname: "Jua Kali Traders"}, date(2024, 1, 1))
		require.NoError(t, err)
		assert.Equal(t, "Jua Kali Traders", c.DisplayName())
	})

	c := newTestClient(t, office)
	assert.Equal(t, ClientStatusPending, c.Status)
	assert.Equal(t, "Amina Otieno", c.DisplayName())
	require.NoError(t, c.CanDelete())

	assert.Error(t, c.Activate(date(2023, 12, 31)), "before submission")
	require.NoError(t, c.Activate(date(2024, 1, 5)))
	assert.Equal(t, date(2024, 1, 5), *c.ActivationDate)
	assert.Error(t, c.CanDelete())
	assert.Error(t, c.Reject(date(2024, 1, 6), "late"))

	assert.Error(t, c.Close(date(2024, 2, 1), "moved", true))
	require.NoError(t, c.Close(date(2024, 2, 1), "moved", false))
	assert.Equal(t, ClientStatusClosed, c.Status)
	assert.Error(t, c.Update(ClientInput{Firstname: "X", Lastname: "Y"}))

	assert.Error(t, c.Reactivate(date(2024, 1, 31)))
	require.NoError(t, c.Reactivate(date(2024, 3, 1)))
	assert.Equal(t, ClientStatusPending, c.Status)
	assert.Nil(t, c.ActivationDate)
}

func TestClientStaffAssignment(t *testing.T) {
	c := newTestClient(t, uuid.New())
	head := ".h."
	branch := ".h.b."
	assert.Error(t, c.AssignStaff(uuid.New(), ".other.", branch))
	require.NoError(t, c.AssignStaff(uuid.New(), head, branch))
	require.NoError(t, c.UnassignStaff())
	assert.Error(t, c.UnassignStaff())
}

func TestClientDocument(t *testing.T) {
	c := newTestClient(t, uuid.New())
	_, err := NewClientDocument(c, "ID", "id.pdf", "application/pdf", MaxDocumentSize+1, "")
	assert.Error(t, err)
	_, err = NewClientDocument(c, "ID", "../id.pdf", "application/pdf", 100, "")
	assert.Error(t, err)

	doc, err := NewClientDocument(c, "National ID", "id.pdf", "application/pdf", 1024, "front")
	require.NoError(t, err)
	assert.Equal(t, c.TenantID.String()+"/clients/"+c.ID.String()+"/"+doc.ID.String()+"/id.pdf", doc.StorageKey)
}

func TestGroupMembership(t *testing.T) {
	tenant, office := uuid.New(), uuid.New()
	center, err := NewCenter(tenant, office, "Kibera Center", "", date(2024, 1, 1))
	require.NoError(t, err)

	_, err = NewGroup(tenant, uuid.New(), center, "Wrong office", "", date(2024, 1, 1))
	assert.Error(t, err)

	group, err := NewGroup(tenant, office, center, "Tumaini", "", date(2024, 1, 1))
	require.NoError(t, err)

	assert.Error(t, group.Activate(date(2024, 1, 2), center), "center still pending")
	require.NoError(t, center.Activate(date(2024, 1, 2), nil))
	require.NoError(t, group.Activate(date(2024, 1, 3), center))

	member := newTestClient(t, office)
	stranger := newTestClient(t, uuid.New())
	assert.Error(t, group.AssociateClients([]Client{*stranger}))
	require.NoError(t, group.AssociateClients([]Client{*member}))
	assert.True(t, group.HasClient(member.ID))
	assert.Error(t, group.AssociateClients([]Client{*member}), "already a member")
	assert.Error(t, center.AssociateClients([]Client{*member}), "centers hold groups")

	assert.Error(t, group.Close(date(2024, 2, 1), 1))
	require.NoError(t, group.DisassociateClients([]uuid.UUID{member.ID}))
	assert.False(t, group.HasClient(member.ID))
	require.NoError(t, group.Close(date(2024, 2, 1), 0))

	loose, err := NewGroup(tenant, office, nil, "Loose", "", date(2024, 1, 1))
	require.NoError(t, err)
	require.NoError(t, loose.AttachToCenter(center))
	assert.Error(t, loose.AttachToCenter(center))
	require.NoError(t, loose.DetachFromCenter(center.ID))
	assert.Nil(t, loose.ParentID)
}
