package store

import (
	"context"

	"github.com/stretchr/testify/suite"

	"addressbook/internal/addressbook/models"
	"addressbook/pkg/platform/sentinel"
)

// gatewayContract is shared by every backend's suite.
type gatewayContract struct {
	suite.Suite
	ctx     context.Context
	gateway func() Gateway
}

func sampleBook() []models.Address {
	return []models.Address{
		{ID: "c1_1", Street: "2 Edward Street", HouseNumber: "2", Postcode: "2133", City: "Sydney", FirstName: "John", LastName: "Smith", Lat: "0.1", Lon: "0.2"},
		{ID: "c2_2", Street: "4 Edward Street", HouseNumber: "4", Postcode: "2133", City: "Sydney", FirstName: "Jane", LastName: "Doe"},
	}
}

func (s *gatewayContract) TestLoadBeforeSave() {
	_, err := s.gateway().Load(s.ctx)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *gatewayContract) TestRoundTrip() {
	g := s.gateway()
	s.Require().NoError(g.Save(s.ctx, sampleBook()))

	got, err := g.Load(s.ctx)
	s.Require().NoError(err)
	s.Equal(sampleBook(), got)
}

func (s *gatewayContract) TestSaveRewritesWholesale() {
	g := s.gateway()
	s.Require().NoError(g.Save(s.ctx, sampleBook()))
	s.Require().NoError(g.Save(s.ctx, sampleBook()[1:]))

	got, err := g.Load(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("c2_2", got[0].ID)
}

func (s *gatewayContract) TestEmptyBookIsNotMissing() {
	g := s.gateway()
	s.Require().NoError(g.Save(s.ctx, nil))

	got, err := g.Load(s.ctx)
	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)
}
