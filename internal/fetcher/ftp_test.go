package fetcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFTPURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantHost string
		wantPath string
		wantErr  bool
	}{
		{
			name:     "woa temperature archive",
			url:      "ftp://ftp.nodc.noaa.gov/pub/woa/WOA13/DATAv2/temperature/csv/decav/1.00/woa13_decav_t00an01v2.csv.gz",
			wantHost: "ftp.nodc.noaa.gov:21",
			wantPath: "/pub/woa/WOA13/DATAv2/temperature/csv/decav/1.00/woa13_decav_t00an01v2.csv.gz",
		},
		{
			name:     "explicit port kept",
			url:      "ftp://ftp.ncei.noaa.gov:2121/pub/woa/WOA18/readme.txt",
			wantHost: "ftp.ncei.noaa.gov:2121",
			wantPath: "/pub/woa/WOA18/readme.txt",
		},
		{
			name:    "http scheme rejected",
			url:     "http://www.ncei.noaa.gov/woa.csv",
			wantErr: true,
		},
		{
			name:    "no path",
			url:     "ftp://ftp.nodc.noaa.gov",
			wantErr: true,
		},
		{
			name:    "unparseable",
			url:     "://bad",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, path, err := splitFTPURL(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, host)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestNewFTPFetcherDefaultTimeout(t *testing.T) {
	f := NewFTPFetcher(FTPOptions{})
	assert.Equal(t, 30*time.Second, f.timeout)

	f = NewFTPFetcher(FTPOptions{Timeout: 2 * time.Minute})
	assert.Equal(t, 2*time.Minute, f.timeout)
}
