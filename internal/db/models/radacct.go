package models

import "time"

// RadAcct is an accounting session written by FreeRADIUS. The tool only reads
// Username and AcctStartTime, and deletes rows together with their user.
type RadAcct struct {
	RadAcctID          uint64     `gorm:"primaryKey;column:radacctid"`
	AcctSessionID      string     `gorm:"column:acctsessionid;size:64;not null"`
	AcctUniqueID       string     `gorm:"column:acctuniqueid;size:32;not null;uniqueIndex"`
	Username           string     `gorm:"column:username;size:64;not null;index:radacct_username"`
	Realm              string     `gorm:"column:realm;size:64"`
	NASIPAddress       string     `gorm:"column:nasipaddress;size:15;not null"`
	NASPortID          string     `gorm:"column:nasportid;size:32"`
	NASPortType        string     `gorm:"column:nasporttype;size:32"`
	AcctStartTime      *time.Time `gorm:"column:acctstarttime;index"`
	AcctUpdateTime     *time.Time `gorm:"column:acctupdatetime"`
	AcctStopTime       *time.Time `gorm:"column:acctstoptime;index"`
	AcctSessionTime    *int64     `gorm:"column:acctsessiontime"`
	AcctInputOctets    *int64     `gorm:"column:acctinputoctets"`
	AcctOutputOctets   *int64     `gorm:"column:acctoutputoctets"`
	CalledStationID    string     `gorm:"column:calledstationid;size:50"`
	CallingStationID   string     `gorm:"column:callingstationid;size:50"`
	AcctTerminateCause string     `gorm:"column:acctterminatecause;size:32"`
	FramedIPAddress    string     `gorm:"column:framedipaddress;size:15"`
}

// TableName returns the FreeRADIUS table name.
func (RadAcct) TableName() string {
	return TableRadAcct
}
