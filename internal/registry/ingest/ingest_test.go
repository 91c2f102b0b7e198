package ingest

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type IngestSuite struct {
	suite.Suite
	extractor *Extractor
}

func TestIngestSuite(t *testing.T) {
	suite.Run(t, new(IngestSuite))
}

func (s *IngestSuite) SetupTest() {
	s.extractor = NewExtractor(nil)
}

func (s *IngestSuite) TestCSVWithHeader() {
	text := "Establishment Name,Address,Certification Type,Registration Number\n" +
		"Oasis Grill,\"123 Main St, Brooklyn, NY 11201\",Slaughterhouse,H-1001\n" +
		"Mezze Point,\"45 Fifth Ave, New York, NY 10001\",,\n"

	records, strategy := s.extractor.Extract(text)
	s.Equal("csv", strategy)
	s.Require().Len(records, 2)
	s.Equal("Oasis Grill", records[0].Name)
	s.Equal("123 Main St, Brooklyn, NY 11201", records[0].Address)
	s.Equal("Slaughterhouse", records[0].CertType)
	s.Equal("H-1001", records[0].RegNum)
	s.Empty(records[1].CertType)
}

func (s *IngestSuite) TestCSVWithoutHeader() {
	text := "Oasis Grill,\"123 Main St, Brooklyn, NY 11201\"\n" +
		"Mezze Point,\"45 Fifth Ave, New York, NY 10001\"\n"

	records, strategy := s.extractor.Extract(text)
	s.Equal("csv", strategy)
	s.Require().Len(records, 2)
	s.Equal("Mezze Point", records[1].Name)
}

func (s *IngestSuite) TestColumnarText() {
	text := "Name                Address                          Type\n" +
		"Oasis Grill         123 Main St Brooklyn NY 11201    Restaurant\n" +
		"Mezze Point\t45 Fifth Ave New York NY 10001\tRestaurant\n"

	records, strategy := s.extractor.Extract(text)
	s.Equal("columnar", strategy)
	s.Require().Len(records, 2)
	s.Equal("Oasis Grill", records[0].Name)
	s.Equal("123 Main St Brooklyn NY 11201", records[0].Address)
	s.Equal("Restaurant", records[0].CertType)
}

func (s *IngestSuite) TestColumnarBeatsCSVWhenAddressesHoldCommas() {
	// Column-aligned rows whose address cells contain commas must not be
	// misread as comma-separated columns.
	text := "Oasis Grill         123 Main St, Brooklyn, NY 11201\n" +
		"Mezze Point         45 Fifth Ave, New York, NY 10001\n"

	records, strategy := s.extractor.Extract(text)
	s.Equal("columnar", strategy)
	s.Require().Len(records, 2)
	s.Equal("Oasis Grill", records[0].Name)
	s.Equal("123 Main St, Brooklyn, NY 11201", records[0].Address)
}

func (s *IngestSuite) TestLooseLines() {
	text := "Oasis Grill - 123 Main St, Brooklyn, NY 11201\n" +
		"\n" +
		"Mezze Point: 45 Fifth Ave, New York, NY 10001\n"

	records, err := (LooseLineStrategy{}).Extract(text)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("Oasis Grill", records[0].Name)
	s.Equal("123 Main St, Brooklyn, NY 11201", records[0].Address)
	s.Equal("Mezze Point", records[1].Name)
}

func (s *IngestSuite) TestLooseLinesSkipUnparseable() {
	records, err := (LooseLineStrategy{}).Extract("no address here\npage 3\n")
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *IngestSuite) TestEmptyDocument() {
	records, strategy := s.extractor.Extract("")
	s.Empty(records)
	s.Empty(strategy)
}

func (s *IngestSuite) TestStrategyOrderIsRespected() {
	ex := NewExtractorWithStrategies(nil, LooseLineStrategy{}, CSVStrategy{})
	records, strategy := ex.Extract("Oasis Grill - 123 Main St, Brooklyn, NY 11201\n")
	s.Equal("loose-line", strategy)
	s.Require().Len(records, 1)
}
